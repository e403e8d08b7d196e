package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"eggcelent-store/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewDatabase_InvalidDriver(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{}, "invalid_driver_name")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

// mockDriver lets sql.Open and db.Ping run without a database.
type mockDriver struct {
	failOpen bool
}

func (m *mockDriver) Open(name string) (driver.Conn, error) {
	if m.failOpen {
		return nil, errors.New("connection refused")
	}
	return &mockConn{}, nil
}

type mockConn struct{}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *mockConn) Close() error                              { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                 { return nil, errors.New("not supported") }

func init() {
	sql.Register("mock_driver_success", &mockDriver{})
	sql.Register("mock_driver_refused", &mockDriver{failOpen: true})
}

func TestNewDatabase_Success(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBURL: "postgres://localhost/eggs"}, "mock_driver_success")
	assert.NoError(t, err)
	assert.NotNil(t, db)
	db.Close()
}

func TestNewDatabase_PingFailure(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBURL: "postgres://localhost/eggs"}, "mock_driver_refused")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping DB")
}
