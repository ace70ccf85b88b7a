package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"scadenze/internal/core"
)

// SQLiteRepository is the persistent record store for the users and bills
// tables. It implements the services' ProfileStore and BillStore
// contracts.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const profileColumns = "id, email, is_premium, available_money, created_at"

// ProfileByID looks a profile up by its auth-provider identity.
func (r *SQLiteRepository) ProfileByID(ctx context.Context, id string) (*core.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE id = ?", id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, core.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select profile by id: %w", err)
	}
	return p, nil
}

// ProfilesByEmail returns matching rows in insertion order.
func (r *SQLiteRepository) ProfilesByEmail(ctx context.Context, email string) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE email = ? ORDER BY rowid", email)
	if err != nil {
		return nil, fmt.Errorf("select profiles by email: %w", err)
	}
	defer rows.Close()

	var out []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateProfile(ctx context.Context, p core.Profile) (*core.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, is_premium, available_money)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+profileColumns,
		p.ID, p.Email, p.IsPremium, core.FormatAmount(p.AvailableMoney))

	created, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile created", "id", created.ID)
	return created, nil
}

// UpsertProfileByEmail writes p with email as the conflict column: the row
// sharing p.Email is re-keyed to p.ID in place, or a fresh row is
// inserted.
func (r *SQLiteRepository) UpsertProfileByEmail(ctx context.Context, p core.Profile) (*core.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, is_premium, available_money)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET
		   id = excluded.id,
		   is_premium = excluded.is_premium,
		   available_money = excluded.available_money
		 RETURNING `+profileColumns,
		p.ID, p.Email, p.IsPremium, core.FormatAmount(p.AvailableMoney))

	upserted, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile by email: %w", err)
	}
	return upserted, nil
}

func (r *SQLiteRepository) UpdateAvailableMoney(ctx context.Context, id string, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET available_money = ? WHERE id = ?",
		core.FormatAmount(amount), id)
	if err != nil {
		return fmt.Errorf("update available money: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update available money rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s: %w", id, core.ErrProfileNotFound)
	}
	return nil
}

const billColumns = "id, user_id, name, amount, due_date, notification_frequency, reminder_enabled, created_at, updated_at"

// BillsByOwner returns the owner's bills sorted by due date ascending.
func (r *SQLiteRepository) BillsByOwner(ctx context.Context, ownerID string) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE user_id = ? ORDER BY due_date ASC, rowid ASC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("select bills by owner: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, _, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill row: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateBill(ctx context.Context, ownerID string, b core.Bill) (*core.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO bills (id, user_id, name, amount, due_date, notification_frequency, reminder_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+billColumns,
		b.ID, ownerID, b.Name, core.FormatAmount(b.Amount), b.DueDate.Key(),
		string(b.Frequency), b.ReminderEnabled, b.CreatedAt, b.UpdatedAt)

	created, _, err := scanBill(row)
	if err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved",
		"id", created.ID,
		"name", created.Name,
		"amount", core.FormatAmount(created.Amount),
		"due_date", created.DueDate.Key())

	return created, nil
}

func (r *SQLiteRepository) UpdateBill(ctx context.Context, ownerID, id string, patch core.BillPatch) (*core.Bill, error) {
	set := "updated_at = ?"
	args := []any{time.Now().UTC()}

	if patch.Name != nil {
		set += ", name = ?"
		args = append(args, *patch.Name)
	}
	if patch.Amount != nil {
		set += ", amount = ?"
		args = append(args, core.FormatAmount(*patch.Amount))
	}
	if patch.DueDate != nil {
		set += ", due_date = ?"
		args = append(args, patch.DueDate.Key())
	}
	if patch.Frequency != nil {
		set += ", notification_frequency = ?"
		args = append(args, string(*patch.Frequency))
	}
	if patch.ReminderEnabled != nil {
		set += ", reminder_enabled = ?"
		args = append(args, *patch.ReminderEnabled)
	}
	args = append(args, id, ownerID)

	row := r.db.QueryRowContext(ctx,
		"UPDATE bills SET "+set+" WHERE id = ? AND user_id = ? RETURNING "+billColumns,
		args...)

	updated, _, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", id, core.ErrBillNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}
	return updated, nil
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM bills WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bill rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", id, core.ErrBillNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAllBills(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM bills WHERE user_id = ?", ownerID); err != nil {
		return fmt.Errorf("delete all bills: %w", err)
	}
	return nil
}

// ReassignBills moves every bill owned by oldOwner to newOwner.
func (r *SQLiteRepository) ReassignBills(ctx context.Context, oldOwner, newOwner string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bills SET user_id = ? WHERE user_id = ?", newOwner, oldOwner)
	if err != nil {
		return 0, fmt.Errorf("reassign bills: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassign bills rows affected: %w", err)
	}

	if moved > 0 {
		slog.InfoContext(ctx, "Bills reassigned",
			"old_owner", oldOwner,
			"new_owner", newOwner,
			"count", moved)
	}
	return moved, nil
}

// ReminderBills joins reminder-enabled bills with their owner's email.
func (r *SQLiteRepository) ReminderBills(ctx context.Context) ([]core.ReminderBill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.name, b.amount, b.due_date, b.notification_frequency,
		        b.reminder_enabled, b.created_at, b.updated_at, u.email
		 FROM bills b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.reminder_enabled = 1
		 ORDER BY b.due_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("select reminder bills: %w", err)
	}
	defer rows.Close()

	var out []core.ReminderBill
	for rows.Next() {
		var (
			b         core.Bill
			ownerID   string
			amount    string
			dueDate   string
			frequency string
			email     string
		)
		if err := rows.Scan(&b.ID, &ownerID, &b.Name, &amount, &dueDate,
			&frequency, &b.ReminderEnabled, &b.CreatedAt, &b.UpdatedAt, &email); err != nil {
			return nil, fmt.Errorf("scan reminder bill row: %w", err)
		}
		if err := fillBill(&b, amount, dueDate, frequency); err != nil {
			return nil, err
		}
		out = append(out, core.ReminderBill{Bill: b, OwnerEmail: email})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminder bill rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*core.Profile, error) {
	var (
		p     core.Profile
		money string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.IsPremium, &money, &p.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(money)
	if err != nil {
		return nil, fmt.Errorf("decode available_money %q: %w", money, err)
	}
	p.AvailableMoney = amount
	return &p, nil
}

func scanBill(row rowScanner) (*core.Bill, string, error) {
	var (
		b         core.Bill
		ownerID   string
		amount    string
		dueDate   string
		frequency string
	)
	if err := row.Scan(&b.ID, &ownerID, &b.Name, &amount, &dueDate,
		&frequency, &b.ReminderEnabled, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, "", err
	}
	if err := fillBill(&b, amount, dueDate, frequency); err != nil {
		return nil, "", err
	}
	return &b, ownerID, nil
}

func fillBill(b *core.Bill, amount, dueDate, frequency string) error {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", amount, err)
	}
	d, err := core.ParseDate(dueDate)
	if err != nil {
		return fmt.Errorf("decode due_date %q: %w", dueDate, err)
	}
	b.Amount = a
	b.DueDate = d
	b.Frequency = core.NotificationFrequency(frequency)
	return nil
}
