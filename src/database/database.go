package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/fundfolio/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}
	migrateFundTransactions()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS fund_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		scheme TEXT NOT NULL,
		isin TEXT NOT NULL,
		folio TEXT NOT NULL,
		asset_class TEXT NOT NULL,
		kind TEXT NOT NULL,
		tx_date TEXT NOT NULL,
		units REAL NOT NULL,
		price REAL NOT NULL,
		amount REAL NOT NULL,
		hash_id TEXT NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, hash_id)
	);

	CREATE TABLE IF NOT EXISTS reported_values (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		financial_year TEXT NOT NULL,
		equity_ltcg REAL NOT NULL DEFAULT 0,
		equity_stcg REAL NOT NULL DEFAULT 0,
		debt_ltcg REAL NOT NULL DEFAULT 0,
		debt_stcg REAL NOT NULL DEFAULT 0,
		hybrid_ltcg REAL NOT NULL DEFAULT 0,
		hybrid_stcg REAL NOT NULL DEFAULT 0,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, financial_year)
	);

	CREATE TABLE IF NOT EXISTS fmv_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		isin TEXT NOT NULL,
		price_date TEXT NOT NULL,
		nav REAL NOT NULL,
		UNIQUE(isin, price_date)
	);

	CREATE TABLE IF NOT EXISTS fy_capital_gains (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		financial_year TEXT NOT NULL,
		equity_ltcg REAL NOT NULL DEFAULT 0,
		equity_stcg REAL NOT NULL DEFAULT 0,
		hybrid_ltcg REAL NOT NULL DEFAULT 0,
		hybrid_stcg REAL NOT NULL DEFAULT 0,
		debt_ltcg REAL NOT NULL DEFAULT 0,
		debt_stcg REAL NOT NULL DEFAULT 0,
		taxable_equity_ltcg REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'NOT_RECONCILED',
		notes TEXT,
		computed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, financial_year)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateFundTransactions backfills columns added after the first release.
func migrateFundTransactions() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='fund_transactions'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the full schema
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'fund_transactions' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'fund_transactions' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(fund_transactions)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'fund_transactions'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'fund_transactions': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'fund_transactions'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'fund_transactions': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'fund_transactions'", "error", err)
		}
		return
	}

	if _, ok := columnExists["asset_class"]; !ok {
		_, err := DB.Exec("ALTER TABLE fund_transactions ADD COLUMN asset_class TEXT NOT NULL DEFAULT 'OTHER'")
		if err != nil {
			logger.L.Error("Error adding 'asset_class' column to 'fund_transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'asset_class' column to 'fund_transactions' table")
		}
	}
	if _, ok := columnExists["hash_id"]; !ok {
		_, err := DB.Exec("ALTER TABLE fund_transactions ADD COLUMN hash_id TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'hash_id' column to 'fund_transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'hash_id' column to 'fund_transactions' table")
		}
	}
}
