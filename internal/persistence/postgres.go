package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// PostgresDB implements the Database interface for PostgreSQL.
type PostgresDB struct {
	db                   *sql.DB
	communities          CommunityRepository
	rules                RuleRepository
	alerts               AlertRepository
	schedules            ScheduleRepository
	notificationSettings NotificationSettingRepository
	profiles             UserProfileRepository
}

// NewPostgresDB creates a new PostgreSQL database connection.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pg := &PostgresDB{db: db}
	pg.communities = &postgresCommunityRepo{db: db}
	pg.rules = &postgresRuleRepo{db: db}
	pg.alerts = &postgresAlertRepo{db: db}
	pg.schedules = &postgresScheduleRepo{db: db}
	pg.notificationSettings = &postgresNotificationSettingRepo{db: db}
	pg.profiles = &postgresProfileRepo{db: db}

	return pg, nil
}

// Communities returns the community repository.
func (p *PostgresDB) Communities() CommunityRepository { return p.communities }

// Rules returns the monitoring rule repository.
func (p *PostgresDB) Rules() RuleRepository { return p.rules }

// Alerts returns the alert repository.
func (p *PostgresDB) Alerts() AlertRepository { return p.alerts }

// Schedules returns the schedule repository.
func (p *PostgresDB) Schedules() ScheduleRepository { return p.schedules }

// NotificationSettings returns the notification setting repository.
func (p *PostgresDB) NotificationSettings() NotificationSettingRepository {
	return p.notificationSettings
}

// Profiles returns the user profile repository.
func (p *PostgresDB) Profiles() UserProfileRepository { return p.profiles }

// Ping verifies the database connection.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (p *PostgresDB) Close() error {
	return p.db.Close()
}
