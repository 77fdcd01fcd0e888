// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive records benchmark summaries in a SQL database so
// runs can be compared over time.
//
// The package does not register any database drivers. Programs
// import the drivers they support, such as
// github.com/mattn/go-sqlite3 or github.com/go-sql-driver/mysql.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/intvec/intvecplot/benchagg"
)

// DB is an archive of summaries backed by a SQL database. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB

	insertRun   *sql.Stmt
	insertPoint *sql.Stmt
}

// now is replaced during testing.
var now = time.Now

// ParseSource splits a data source of the form "driver:dsn", such as
// "sqlite3:runs.db" or "mysql:user@tcp(host)/db", into its parts.
func ParseSource(source string) (driverName, dataSourceName string, err error) {
	driverName, dataSourceName, ok := strings.Cut(source, ":")
	if !ok || driverName == "" || dataSourceName == "" {
		return "", "", fmt.Errorf("bad database %q, want driver:dsn", source)
	}
	return driverName, dataSourceName, nil
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other engines receive MySQL syntax.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite3" {
		// An in-memory database exists per connection.
		db.SetMaxOpenConns(1)
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Pipeline VARCHAR(255) NOT NULL,
	Unit VARCHAR(32) NOT NULL,
	Baseline DOUBLE NOT NULL,
	Created BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS Points (
	RunID BIGINT UNSIGNED,
	Codec VARCHAR(255),
	K BIGINT,
	Value DOUBLE NOT NULL,
	N INTEGER NOT NULL,
	PRIMARY KEY (RunID, Codec, K),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RunsPipeline ON Runs(Pipeline, Created);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Pipeline, Unit, Baseline, Created) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertPoint, err = db.sql.Prepare("INSERT INTO Points(RunID, Codec, K, Value, N) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// A Run is an archived summary.
type Run struct {
	ID       int64
	Pipeline string
	Created  time.Time
	benchagg.Summary
}

// InsertSummary archives sum as a new run of pipeline and returns the
// run's ID. ExtraBaselines is not stored.
func (db *DB) InsertSummary(ctx context.Context, pipeline string, sum *benchagg.Summary) (id int64, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, pipeline, sum.Unit, sum.Baseline, now().Unix())
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}
	stmt := tx.StmtContext(ctx, db.insertPoint)
	for _, p := range sum.Points {
		if _, err = stmt.ExecContext(ctx, id, p.Codec, p.K, p.Value, p.N); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// LatestRun returns the most recently archived run of pipeline, or nil
// if there is none.
func (db *DB) LatestRun(ctx context.Context, pipeline string) (*Run, error) {
	run := &Run{Pipeline: pipeline}
	var created int64
	err := db.sql.QueryRowContext(ctx,
		"SELECT RunID, Unit, Baseline, Created FROM Runs WHERE Pipeline = ? ORDER BY RunID DESC LIMIT 1",
		pipeline).Scan(&run.ID, &run.Unit, &run.Baseline, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	run.Created = time.Unix(created, 0)

	rows, err := db.sql.QueryContext(ctx,
		"SELECT Codec, K, Value, N FROM Points WHERE RunID = ? ORDER BY Codec, K", run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p benchagg.Point
		if err := rows.Scan(&p.Codec, &p.K, &p.Value, &p.N); err != nil {
			return nil, err
		}
		run.Points = append(run.Points, p)
	}
	return run, rows.Err()
}

// CountRuns returns the number of archived runs.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertPoint.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
