package datasource

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/JamieWeston/Football-Predictions/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable is implemented by anything the archive can store.
// Table layout comes entirely from struct tags: column, dbtype,
// primary and index.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]interface{}
	SetPrimaryKey(map[string]interface{}) error
	BeforeSave() error
	AfterSave() error
	BeforeDelete() error
	AfterDelete() error
}

// executor is the slice of database/sql shared by *sql.DB and *sql.Tx,
// letting the same save path run standalone or inside a transaction
type executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Archive is a sqlite backed store of results and past predictions.
// Every Archive owns its own connection, two archives never share state.
type Archive struct {
	db   *sql.DB
	path string
}

// OpenArchive opens or creates the sqlite archive at path and makes sure
// its tables exist. Use ":memory:" for a throwaway archive in tests.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite has a single writer anyway, and one connection keeps an
	// in-memory archive visible to every caller
	db.SetMaxOpenConns(1)

	// Test the connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Archive{db: db, path: path}
	if err := a.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Archive initialized successfully", path)
	return a, nil
}

// Close releases the underlying database connection
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Path returns the location this archive was opened at
func (a *Archive) Path() string {
	return a.path
}

// createTables creates every table the archive needs
func (a *Archive) createTables() error {
	logger.Debug("Creating archive tables")

	if err := a.CreateTable(&MatchRecord{}); err != nil {
		return fmt.Errorf("failed to create match table: %w", err)
	}
	if err := a.CreateTable(&PredictionRecord{}); err != nil {
		return fmt.Errorf("failed to create prediction table: %w", err)
	}
	return nil
}

// CreateTable creates a table for the given persistable object using struct tags
func (a *Archive) CreateTable(obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)

	if _, err := a.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	// Create indexes
	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := a.db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}

	return nil
}

// Save persists the object to the archive (INSERT or UPDATE)
func (a *Archive) Save(obj Persistable) error {
	return save(a.db, obj)
}

// BulkSave saves multiple objects inside a single transaction, so a batch
// either lands whole or not at all
func (a *Archive) BulkSave(objects []Persistable) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := save(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// save runs the hooks and writes the object through the given executor
func save(ex executor, obj Persistable) error {
	// Call before save hook
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	// Check if object exists
	exists, err := exists(ex, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}

	if exists {
		err = update(ex, obj)
	} else {
		err = insert(ex, obj)
	}
	if err != nil {
		return err
	}

	// Call after save hook
	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

// insert adds a new record
func insert(ex executor, obj Persistable) error {
	tableName := obj.GetTableName()
	columns, placeholders, values := getInsertData(obj)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	logger.Debug("Insert SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

// update modifies an existing record
func update(ex executor, obj Persistable) error {
	tableName := obj.GetTableName()
	setPairs, values := getUpdateData(obj)

	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)

	logger.Debug("Update SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

// Exists checks if the object's primary key is already in the archive
func (a *Archive) Exists(obj Persistable) (bool, error) {
	return exists(a.db, obj)
}

func exists(ex executor, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)

	var count int
	if err := ex.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// Delete removes the object from the archive
func (a *Archive) Delete(obj Persistable) error {
	// Call before delete hook
	if err := obj.BeforeDelete(); err != nil {
		return fmt.Errorf("before delete hook failed: %w", err)
	}

	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)

	if _, err := a.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}

	// Call after delete hook
	if err := obj.AfterDelete(); err != nil {
		return fmt.Errorf("after delete hook failed: %w", err)
	}
	return nil
}

// FindByPrimaryKey loads a single record into obj by its primary key
func (a *Archive) FindByPrimaryKey(obj Persistable, primaryKey map[string]interface{}) error {
	tableName := obj.GetTableName()
	columns, destinations := getSelectData(obj)
	whereClause, values := buildWhereClause(primaryKey)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)

	logger.Debug("FindByPrimaryKey SQL", query)

	row := a.db.QueryRow(query, values...)
	if err := row.Scan(destinations...); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("record not found in %s", tableName)
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

// FindAll retrieves every record of the given type
func (a *Archive) FindAll(obj Persistable) ([]interface{}, error) {
	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), tableName)

	logger.Debug("FindAll SQL", query)

	return a.queryInto(obj, query)
}

// FindWhere retrieves records matching a custom WHERE clause
func (a *Archive) FindWhere(obj Persistable, whereClause string, args ...interface{}) ([]interface{}, error) {
	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)

	logger.Debug("FindWhere SQL", query)

	return a.queryInto(obj, query, args...)
}

// queryInto runs a select and scans each row into a fresh instance of
// obj's concrete type
func (a *Archive) queryInto(obj Persistable, query string, args ...interface{}) ([]interface{}, error) {
	tableName := obj.GetTableName()

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var results []interface{}
	for rows.Next() {
		// Create new instance of the object type
		newObj := reflect.New(objType).Interface()
		_, destinations := getSelectData(newObj)

		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj interface{}, tableName string) string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var columns []string
	var primaryKeys []string

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Skip fields without database type
		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}

		columnName := columnNameFor(field)

		// Primary key columns are collected into one constraint so
		// compound keys come out right
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, columnName)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}

		columns = append(columns, fmt.Sprintf("%s %s", columnName, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj interface{}, tableName string) []string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var indexSQL []string

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)

		if field.Tag.Get("index") == "" {
			continue
		}

		columnName := columnNameFor(field)
		indexName := fmt.Sprintf("idx_%s_%s", tableName, columnName)
		query := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, columnName)
		indexSQL = append(indexSQL, query)
	}

	return indexSQL
}

// columnNameFor resolves a field's column name, defaulting to the
// lowercased field name
func columnNameFor(field reflect.StructField) string {
	if name := field.Tag.Get("column"); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

// getInsertData extracts column names, placeholders and values for INSERT
func getInsertData(obj interface{}) ([]string, []string, []interface{}) {
	objValue := reflect.ValueOf(obj)
	objType := reflect.TypeOf(obj)

	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
		objType = objType.Elem()
	}

	var columns []string
	var placeholders []string
	var values []interface{}

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		fieldValue := objValue.Field(i)

		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}

		columns = append(columns, columnNameFor(field))
		placeholders = append(placeholders, "?")
		values = append(values, fieldValue.Interface())
	}

	return columns, placeholders, values
}

// getUpdateData extracts SET pairs and values for UPDATE
func getUpdateData(obj interface{}) ([]string, []interface{}) {
	objValue := reflect.ValueOf(obj)
	objType := reflect.TypeOf(obj)

	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
		objType = objType.Elem()
	}

	var setPairs []string
	var values []interface{}

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		fieldValue := objValue.Field(i)

		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}

		// Primary key fields never move in an update
		if field.Tag.Get("primary") == "true" {
			continue
		}

		setPairs = append(setPairs, fmt.Sprintf("%s = ?", columnNameFor(field)))
		values = append(values, fieldValue.Interface())
	}

	return setPairs, values
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj interface{}) ([]string, []interface{}) {
	objValue := reflect.ValueOf(obj)
	objType := reflect.TypeOf(obj)

	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
		objType = objType.Elem()
	}

	var columns []string
	var destinations []interface{}

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		fieldValue := objValue.Field(i)

		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}

		columns = append(columns, columnNameFor(field))
		destinations = append(destinations, fieldValue.Addr().Interface())
	}

	return columns, destinations
}

// buildWhereClause builds a WHERE clause from a primary key map
func buildWhereClause(primaryKey map[string]interface{}) (string, []interface{}) {
	var conditions []string
	var values []interface{}

	for column, value := range primaryKey {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, value)
	}

	return strings.Join(conditions, " AND "), values
}
