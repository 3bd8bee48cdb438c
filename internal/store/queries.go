package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresSource methods reference these constants.

// Product queries. Products are served in id order so batched rebuild pages
// never overlap.
const (
	queryCountProducts = `
		SELECT count(*)
		FROM products
		WHERE published`

	queryListProducts = `
		SELECT id, title, type,
			COALESCE(price, ''), COALESCE(regular_price, ''),
			COALESCE(external_url, ''), COALESCE(product_url_meta, ''),
			COALESCE(permalink, ''), COALESCE(image_url, '')
		FROM products
		WHERE published
		ORDER BY id
		LIMIT $1 OFFSET $2`

	queryProductTerms = `
		SELECT product_id, slug, name
		FROM product_terms
		WHERE product_id = ANY($1)
		ORDER BY product_id, position`

	queryProductTags = `
		SELECT product_id, slug
		FROM product_tags
		WHERE product_id = ANY($1)
		ORDER BY product_id, slug`

	queryProductAttributes = `
		SELECT product_id, name, value
		FROM product_attributes
		WHERE product_id = ANY($1)
		ORDER BY product_id, name`
)

// Seed queries, used by development tooling and integration tests.
const (
	queryInsertProduct = `
		INSERT INTO products (
			id, title, type, price, regular_price,
			external_url, product_url_meta, permalink, image_url,
			published, created_at
		) VALUES (
			@id, @title, @type, @price, @regular_price,
			@external_url, @product_url_meta, @permalink, @image_url,
			true, now()
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			type = EXCLUDED.type,
			price = EXCLUDED.price,
			regular_price = EXCLUDED.regular_price,
			external_url = EXCLUDED.external_url,
			product_url_meta = EXCLUDED.product_url_meta,
			permalink = EXCLUDED.permalink,
			image_url = EXCLUDED.image_url`

	queryInsertTerm = `
		INSERT INTO product_terms (product_id, position, slug, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, position) DO UPDATE SET
			slug = EXCLUDED.slug,
			name = EXCLUDED.name`

	queryInsertTag = `
		INSERT INTO product_tags (product_id, slug)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	queryInsertAttribute = `
		INSERT INTO product_attributes (product_id, name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, name) DO UPDATE SET
			value = EXCLUDED.value`
)
