package store

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		title      TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'OPEN',
		priority   INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		done_at    TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,

	`CREATE TABLE IF NOT EXISTS agent_runs (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		input_text  TEXT,
		intent      TEXT,
		plan_json   TEXT,
		result_json TEXT,
		status      TEXT NOT NULL DEFAULT 'RUNNING',
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_user ON agent_runs(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS approval_requests (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		action_type  TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'PENDING',
		result_json  TEXT,
		created_at   TIMESTAMP NOT NULL,
		decided_at   TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_approvals_user_status ON approval_requests(user_id, status)`,

	`CREATE TABLE IF NOT EXISTS proposals (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		rule_type     TEXT NOT NULL,
		pattern       TEXT NOT NULL,
		action_json   TEXT NOT NULL,
		description   TEXT,
		priority      INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'PENDING',
		source_run_id TEXT,
		created_at    TIMESTAMP NOT NULL,
		decided_at    TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_user ON proposals(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS active_rules (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		proposal_id    TEXT,
		rule_type      TEXT NOT NULL,
		pattern        TEXT NOT NULL,
		action_json    TEXT NOT NULL,
		priority       INTEGER NOT NULL DEFAULT 0,
		is_active      INTEGER NOT NULL DEFAULT 1,
		created_at     TIMESTAMP NOT NULL,
		deactivated_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rules_user_active ON active_rules(user_id, is_active, priority)`,

	`CREATE TABLE IF NOT EXISTS memories (
		user_id    TEXT NOT NULL,
		key        TEXT NOT NULL,
		value_json TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, key)
	)`,
}
