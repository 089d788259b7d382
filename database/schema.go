package database

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id          VARCHAR(36) PRIMARY KEY,
		username    VARCHAR(50) NOT NULL,
		email       VARCHAR(255) NOT NULL,
		password    VARCHAR(255) NOT NULL,
		created_at  DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
		updated_at  DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uk_username (username),
		UNIQUE KEY uk_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		account_id  VARCHAR(36) NOT NULL,
		friend_id   VARCHAR(36) NOT NULL,
		created_at  DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (account_id, friend_id),
		INDEX idx_friend (friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id           VARCHAR(36) PRIMARY KEY,
		from_id      VARCHAR(36) NOT NULL,
		to_id        VARCHAR(36) NOT NULL,
		status       ENUM('pending', 'accepted', 'ignored') NOT NULL DEFAULT 'pending',
		pending_pair VARCHAR(80) NULL,
		created_at   DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
		updated_at   DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uk_pending_pair (pending_pair),
		INDEX idx_to_status (to_id, status),
		INDEX idx_from (from_id),
		CONSTRAINT chk_not_self CHECK (from_id <> to_id)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id          VARCHAR(36) PRIMARY KEY,
		author_id   VARCHAR(36) NOT NULL,
		text        TEXT NOT NULL,
		created_at  DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_author_time (author_id, created_at),
		INDEX idx_time (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
		post_id     VARCHAR(36) NOT NULL,
		account_id  VARCHAR(36) NOT NULL,
		created_at  DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (post_id, account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_comments (
		id          VARCHAR(36) PRIMARY KEY,
		post_id     VARCHAR(36) NOT NULL,
		author_id   VARCHAR(36) NOT NULL,
		text        TEXT NOT NULL,
		created_at  DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_post_time (post_id, created_at)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id          TEXT PRIMARY KEY,
		username    TEXT NOT NULL UNIQUE,
		email       TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		account_id  TEXT NOT NULL,
		friend_id   TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (account_id, friend_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friendships_friend ON friendships(friend_id)`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id           TEXT PRIMARY KEY,
		from_id      TEXT NOT NULL,
		to_id        TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'ignored')),
		pending_pair TEXT UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		CHECK (from_id <> to_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_id, status)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id          TEXT PRIMARY KEY,
		author_id   TEXT NOT NULL,
		text        TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
		post_id     TEXT NOT NULL,
		account_id  TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (post_id, account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_comments (
		id          TEXT PRIMARY KEY,
		post_id     TEXT NOT NULL,
		author_id   TEXT NOT NULL,
		text        TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_post_comments_post ON post_comments(post_id, created_at)`,
}
