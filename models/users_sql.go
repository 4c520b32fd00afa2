package models

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"volunteen/utils"
)

type sqlUserRepo struct{ db *sql.DB }

func NewSQLUserRepository(db *sql.DB) UserRepository { return &sqlUserRepo{db} }

func (r *sqlUserRepo) Create(u *User) error {
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	token := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO users(id, email, password, first_name, last_name, verified, verify_token,
		                  photo_url, description, organization, volunteer_hours,
		                  points, points_month, login_streak, last_login_date)
		VALUES ($1,$2,$3,$4,$5,FALSE,$6,'','','',0,0,'',0,'')`,
		u.ID, u.Email, hashed, u.FirstName, u.LastName, token)
	if err != nil {
		return err
	}
	u.Password = ""
	u.VerifyToken = token
	return nil
}

func (r *sqlUserRepo) Verify(token string) error {
	res, err := r.db.Exec(`UPDATE users SET verified=TRUE, verify_token='' WHERE verify_token=$1 AND verify_token <> ''`, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlUserRepo) ValidateCredentials(email, plain string) (User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT id, email, password, first_name, last_name, verified
		FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Verified)
	if err != nil {
		return User{}, errors.New("invalid credentials")
	}
	if !utils.CheckPasswordHash(plain, u.Password) {
		return User{}, errors.New("invalid credentials")
	}
	u.Password = ""
	return u, nil
}

func (r *sqlUserRepo) GetByID(id string) (User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT id, email, first_name, last_name, photo_url, description, organization,
		       verified, volunteer_hours, points, points_month, login_streak, last_login_date
		FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhotoURL, &u.Description,
			&u.Organization, &u.Verified, &u.VolunteerHours, &u.Points, &u.PointsMonth,
			&u.LoginStreak, &u.LastLoginDate)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *sqlUserRepo) UpdateProfile(id, description, organization, photoURL string) error {
	res, err := r.db.Exec(`
		UPDATE users SET description=$2, organization=$3, photo_url=$4 WHERE id=$1`,
		id, description, organization, photoURL)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlUserRepo) AddHours(id string, hours float64) (float64, error) {
	var total float64
	err := r.db.QueryRow(`
		UPDATE users SET volunteer_hours = volunteer_hours + $2
		WHERE id=$1 RETURNING volunteer_hours`, id, hours).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return total, err
}

func (r *sqlUserRepo) RemoveHours(id string, hours float64) (float64, error) {
	var total float64
	err := r.db.QueryRow(`
		UPDATE users SET volunteer_hours = GREATEST(volunteer_hours - $2, 0)
		WHERE id=$1 RETURNING volunteer_hours`, id, hours).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return total, err
}

// ApplyPointsDelta: guarded lazy reset first (committed on its own), then an
// atomic in-place increment. Two concurrent deltas both land; neither can
// clobber the other's read. Mirrors the pure ApplyPointsDelta in mutations.go.
func (r *sqlUserRepo) ApplyPointsDelta(id string, delta int, now time.Time) error {
	month := MonthKey(now)
	if _, err := r.db.Exec(`
		UPDATE users SET points=0, points_month=$2
		WHERE id=$1 AND points_month IS DISTINCT FROM $2`, id, month); err != nil {
		return err
	}
	res, err := r.db.Exec(`UPDATE users SET points = points + $2 WHERE id=$1`, id, delta)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLoginStreak evaluates the streak state machine at most once per day.
// The WHERE clause re-checks last_login_date so two racing logins for the
// same user count the day once.
func (r *sqlUserRepo) TouchLoginStreak(id string, now time.Time) (int, bool, error) {
	var last string
	var streak int
	err := r.db.QueryRow(`SELECT last_login_date, login_streak FROM users WHERE id=$1`, id).
		Scan(&last, &streak)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, err
	}

	next, bonus, changed := NextStreak(last, streak, now)
	if !changed {
		return streak, false, nil
	}

	res, err := r.db.Exec(`
		UPDATE users SET login_streak=$2, last_login_date=$3
		WHERE id=$1 AND last_login_date=$4`, id, next, DateKey(now), last)
	if err != nil {
		return streak, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// lost the race to another login today
		return streak, false, nil
	}

	if bonus {
		if err := r.ApplyPointsDelta(id, PointsStreakDay, now); err != nil {
			return next, false, err
		}
	}
	return next, bonus, nil
}

func (r *sqlUserRepo) IncrCompletedEvents(id, monthKey string, delta int) error {
	_, err := r.db.Exec(`
		INSERT INTO completed_events(user_id, month_key, count) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, month_key) DO UPDATE SET count = completed_events.count + $3`,
		id, monthKey, delta)
	return err
}

func (r *sqlUserRepo) Leaderboard() ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(`
		SELECT first_name || ' ' || last_name, points, photo_url
		FROM users WHERE points > 0 ORDER BY points DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Points, &e.Photo); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
