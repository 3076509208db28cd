package repository

func schemaStatements(dialect Dialect) []string {
	if dialect == DialectPostgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS players (
				id BIGSERIAL PRIMARY KEY,
				player_id TEXT,
				player_name TEXT,
				country TEXT,
				date_added TIMESTAMPTZ
			)`,
			`CREATE TABLE IF NOT EXISTS country_tracker (
				id BIGSERIAL PRIMARY KEY,
				country TEXT,
				last_added_date TIMESTAMPTZ
			)`,
			`CREATE INDEX IF NOT EXISTS idx_country_tracker_last_added
				ON country_tracker (last_added_date DESC, id DESC)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT,
			player_name TEXT,
			country TEXT,
			date_added TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS country_tracker (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			country TEXT,
			last_added_date TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_country_tracker_last_added
			ON country_tracker (last_added_date DESC, id DESC)`,
	}
}
