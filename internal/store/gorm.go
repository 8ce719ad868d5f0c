package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vyrodovalexey/library-api/internal/model"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Driver error codes for unique constraint violations.
const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
)

// LIKE conditions used by Search; '!' escapes wildcards in the pattern.
const (
	likeEscape            = "!"
	searchTitleCondition  = "LOWER(title) LIKE ? ESCAPE '!'"
	searchAuthorCondition = "LOWER(author) LIKE ? ESCAPE '!'"
)

// ErrUnsupportedDriver is returned by OpenDB for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// DBOptions configures the SQL connection pool.
type DBOptions struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// bookRecord is the persisted row of the books table.
type bookRecord struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"size:255;not null"`
	Author          string `gorm:"size:255;not null"`
	ISBN            string `gorm:"column:isbn;size:13;not null;uniqueIndex:idx_books_isbn"`
	PublicationYear int    `gorm:"not null"`
	Description     string `gorm:"size:1000"`
}

// TableName pins the table name.
func (bookRecord) TableName() string {
	return "books"
}

// GormStore implements Store on top of a relational database through gorm.
type GormStore struct {
	db *gorm.DB
}

// dialector returns the gorm dialector for the configured driver.
func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return gormmysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// OpenDB connects to the database and configures the connection pool.
func OpenDB(opts DBOptions) (*gorm.DB, error) {
	dial, err := dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if opts.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

// NewGormStore creates a GormStore and migrates the books table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&bookRecord{}); err != nil {
		return nil, fmt.Errorf("migrating books table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// List returns all books ordered by ID.
func (s *GormStore) List(ctx context.Context) ([]model.Book, error) {
	var records []bookRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return toBooks(records), nil
}

// Get retrieves a book by its ID. IDs start at 1, so a non-positive id is
// reported as not found without a query.
func (s *GormStore) Get(ctx context.Context, id int64) (*model.Book, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}

	var record bookRecord
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return record.toBook(), nil
}

// ExistsByISBN reports whether a book with exactly this ISBN exists.
func (s *GormStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&bookRecord{}).Where("isbn = ?", isbn).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("exists by isbn: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new book. A unique index violation on isbn is reported
// as ErrDuplicateISBN.
func (s *GormStore) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	if book == nil {
		return nil, fmt.Errorf("create book: %w", ErrNilBook)
	}

	record := toRecord(book)
	record.ID = 0

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateError(err) {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	return record.toBook(), nil
}

// Update overwrites every mutable field of an existing book inside a
// transaction.
func (s *GormStore) Update(ctx context.Context, id int64, book *model.Book) (*model.Book, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}

	if book == nil {
		return nil, fmt.Errorf("update book: %w", ErrNilBook)
	}

	var updated bookRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		changes := toRecord(book)
		err := tx.Model(&updated).
			Select("title", "author", "isbn", "publication_year", "description").
			Updates(&changes).Error
		if err != nil {
			return err
		}

		updated.Title = changes.Title
		updated.Author = changes.Author
		updated.ISBN = changes.ISBN
		updated.PublicationYear = changes.PublicationYear
		updated.Description = changes.Description

		return nil
	})

	switch {
	case err == nil:
		return updated.toBook(), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case isDuplicateError(err):
		return nil, ErrDuplicateISBN
	default:
		return nil, fmt.Errorf("update book: %w", err)
	}
}

// Delete removes a book by its ID.
func (s *GormStore) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}

	result := s.db.WithContext(ctx).Delete(&bookRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete book: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Search returns the books matching every set field of the filter.
func (s *GormStore) Search(ctx context.Context, filter SearchFilter) ([]model.Book, error) {
	query := s.db.WithContext(ctx).Model(&bookRecord{})

	if filter.Title != nil {
		query = query.Where(searchTitleCondition, likePattern(*filter.Title))
	}
	if filter.Author != nil {
		query = query.Where(searchAuthorCondition, likePattern(*filter.Author))
	}

	var records []bookRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	return toBooks(records), nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// isDuplicateError reports whether err is a unique constraint violation.
// gorm translates known driver errors to ErrDuplicatedKey; the driver codes
// are checked as well for errors raised outside gorm's translator.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return false
}

// likePattern builds a lower-cased LIKE pattern matching s as a substring,
// escaping LIKE wildcards with '!'.
func likePattern(s string) string {
	r := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}

func toRecord(b *model.Book) bookRecord {
	return bookRecord{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationYear: b.Year(),
		Description:     b.Description,
	}
}

func (r *bookRecord) toBook() *model.Book {
	year := r.PublicationYear
	return &model.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: &year,
		Description:     r.Description,
	}
}

func toBooks(records []bookRecord) []model.Book {
	books := make([]model.Book, 0, len(records))
	for i := range records {
		books = append(books, *records[i].toBook())
	}
	return books
}
