package mysql

const upsertListingSQL = `
INSERT INTO listings
  (id, type, name, location, city_slug, category, description, images, amenities, rooms)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  type        = VALUES(type),
  name        = VALUES(name),
  location    = VALUES(location),
  city_slug   = VALUES(city_slug),
  category    = VALUES(category),
  description = VALUES(description),
  images      = VALUES(images),
  amenities   = VALUES(amenities),
  rooms       = VALUES(rooms),
  updated_at  = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO ingest_misses (id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// Alias rows are bulk-upserted; the VALUES list is built per call.
const upsertAliasesPrefix = "INSERT INTO location_aliases (type, alias, slug) VALUES "

const upsertAliasesOnDup = " ON DUPLICATE KEY UPDATE slug = VALUES(slug), updated_at = CURRENT_TIMESTAMP"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listingColumns = `id, type, name, location, city_slug, category, description, images, amenities, rooms`

const getListingSQL = `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

// Ordered by id so catalog builds are deterministic across reloads.
const listListingsSQL = `SELECT ` + listingColumns + ` FROM listings WHERE type = ? ORDER BY id`

const listAliasesSQL = `SELECT alias, slug FROM location_aliases WHERE type = ?`
