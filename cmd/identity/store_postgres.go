package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements identity persistence over PostgreSQL.
//
// Expected schema (managed outside the server, mirrors the reference data
// model):
//
//	create table "user" (
//	    user_id       text primary key,  -- ULID
//	    username      text not null,
//	    email         text not null,
//	    password_hash text not null,
//	    bio           text not null default '',
//	    image         text,
//	    created_at    timestamptz not null default now(),
//	    updated_at    timestamptz not null default now(),
//	    constraint user_username_key unique (username),
//	    constraint user_email_key unique (email)
//	);
//
//	create table follow (
//	    following_user_id text not null references "user" (user_id) on delete cascade,
//	    followed_user_id  text not null references "user" (user_id) on delete cascade,
//	    created_at        timestamptz not null default now(),
//	    primary key (following_user_id, followed_user_id),
//	    constraint user_cannot_follow_self check (following_user_id <> followed_user_id)
//	);
//
// The pgx pool is owned by the caller; this store must not close it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// CreateUser inserts a new account. Uniqueness conflicts surface as
// ConflictError with the logical field name.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username and email are required"}
	}
	if in.PasswordHash == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	userID, err := NewULID(time.Now().UTC())
	if err != nil {
		return User{}, err
	}

	_, err = s.pool.Exec(ctx,
		`insert into "user" (user_id, username, email, password_hash)
		 values ($1, $2, $3, $4)`,
		userID, username, email, in.PasswordHash,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	return User{ID: userID, Username: username, Email: email}, nil
}

// GetUserByEmail returns the account and stored credential for a login check.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserByEmail"

	var ua UserAuth
	err := s.pool.QueryRow(ctx,
		`select user_id, username, email, bio, image, password_hash
		   from "user" where email = $1`,
		email,
	).Scan(&ua.ID, &ua.Username, &ua.Email, &ua.Bio, &ua.Image, &ua.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return UserAuth{}, err
	}
	return ua, nil
}

// GetUserByID returns an account by its ULID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	var u User
	err := s.pool.QueryRow(ctx,
		`select user_id, username, email, bio, image from "user" where user_id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Bio, &u.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateUser applies a coalesce-style partial update and returns the new row.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (User, error) {
	const op = "identity.UpdateUser"

	var u User
	err := s.pool.QueryRow(ctx,
		`update "user"
		    set email = coalesce($1, email),
		        username = coalesce($2, username),
		        password_hash = coalesce($3, password_hash),
		        bio = coalesce($4, bio),
		        image = coalesce($5, image),
		        updated_at = now()
		  where user_id = $6
		  returning user_id, username, email, bio, image`,
		in.Email, in.Username, in.PasswordHash, in.Bio, in.Image, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Bio, &u.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}
	return u, nil
}

// GetProfile returns the public profile of username as seen by viewerID
// (empty for anonymous viewers).
func (s *PostgresStore) GetProfile(ctx context.Context, username, viewerID string) (Profile, error) {
	const op = "identity.GetProfile"

	var p Profile
	err := s.pool.QueryRow(ctx,
		`select username, bio, image,
		        exists(
		            select 1 from follow
		             where followed_user_id = "user".user_id
		               and following_user_id = $2
		        ) as following
		   from "user"
		  where username = $1`,
		username, textOrNil(viewerID),
	).Scan(&p.Username, &p.Bio, &p.Image, &p.Following)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, NotFoundError{Op: op, Resource: "profile"}
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Follow records a follow edge. Already-following is a no-op; self-follow is
// rejected by the user_cannot_follow_self constraint and maps to ErrForbidden.
func (s *PostgresStore) Follow(ctx context.Context, username, followerID string) (Profile, error) {
	const op = "identity.Follow"

	var p Profile
	err := s.pool.QueryRow(ctx,
		`with selected_user as (
		     select user_id, username, bio, image
		       from "user" where username = $1
		 ),
		 inserted_follow as (
		     insert into follow (following_user_id, followed_user_id)
		     select $2, user_id from selected_user
		     on conflict do nothing
		 )
		 select username, bio, image, true as following from selected_user`,
		username, followerID,
	).Scan(&p.Username, &p.Bio, &p.Image, &p.Following)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, NotFoundError{Op: op, Resource: "profile"}
	}
	if err != nil {
		if pgIsCheckViolation(err, "user_cannot_follow_self") {
			return Profile{}, OpError{Op: op, Kind: ErrForbidden, Msg: "cannot follow yourself"}
		}
		return Profile{}, err
	}
	return p, nil
}

// Unfollow removes a follow edge if present.
func (s *PostgresStore) Unfollow(ctx context.Context, username, followerID string) (Profile, error) {
	const op = "identity.Unfollow"

	var p Profile
	err := s.pool.QueryRow(ctx,
		`with selected_user as (
		     select user_id, username, bio, image
		       from "user" where username = $1
		 ),
		 deleted_follow as (
		     delete from follow
		      where following_user_id = $2
		        and followed_user_id = (select user_id from selected_user)
		 )
		 select username, bio, image, false as following from selected_user`,
		username, followerID,
	).Scan(&p.Username, &p.Bio, &p.Image, &p.Following)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, NotFoundError{Op: op, Resource: "profile"}
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// textOrNil passes empty strings as SQL nulls.
func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func pgIsCheckViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23514" && strings.EqualFold(pgErr.ConstraintName, constraint)
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch c {
	case "user_username_key":
		return "username", true
	case "user_email_key":
		return "email", true
	default:
		switch {
		case strings.Contains(c, "username"):
			return "username", true
		case strings.Contains(c, "email"):
			return "email", true
		default:
			return "unique", true
		}
	}
}
