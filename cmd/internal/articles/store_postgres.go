package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"conduit/cmd/identity"
	"conduit/cmd/internal/ownership"
)

// PostgresStore implements article persistence over PostgreSQL.
//
// Expected schema (managed outside the server):
//
//	create table article (
//	    article_id  text primary key,  -- ULID
//	    user_id     text not null references "user" (user_id) on delete cascade,
//	    slug        text not null,
//	    title       text not null,
//	    description text not null default '',
//	    body        text not null,
//	    tag_list    text[] not null default '{}',
//	    created_at  timestamptz not null default now(),
//	    updated_at  timestamptz not null default now(),
//	    constraint article_slug_key unique (slug)
//	);
//
//	create table article_favorite (
//	    article_id text not null references article (article_id) on delete cascade,
//	    user_id    text not null references "user" (user_id) on delete cascade,
//	    created_at timestamptz not null default now(),
//	    primary key (article_id, user_id)
//	);
//
//	create table article_comment (
//	    comment_id bigint generated always as identity primary key,
//	    article_id text not null references article (article_id) on delete cascade,
//	    user_id    text not null references "user" (user_id) on delete cascade,
//	    body       text not null,
//	    created_at timestamptz not null default now(),
//	    updated_at timestamptz not null default now()
//	);
//
// The pgx pool is owned by the caller; this store must not close it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("articles: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// articleColumns is the shared projection for full article rows; $1 is the
// viewer (nullable). Favorited and following are always scoped to the row.
const articleColumns = `
	slug,
	title,
	description,
	body,
	tag_list,
	article.created_at,
	article.updated_at,
	exists(
	    select 1 from article_favorite
	     where article_id = article.article_id and user_id = $1
	) as favorited,
	(select count(*) from article_favorite fav where fav.article_id = article.article_id) as favorites_count,
	author.username,
	author.bio,
	author.image,
	exists(
	    select 1 from follow
	     where followed_user_id = author.user_id and following_user_id = $1
	) as following_author`

func scanArticle(row pgx.Row) (Article, error) {
	var a Article
	err := row.Scan(
		&a.Slug, &a.Title, &a.Description, &a.Body, &a.TagList,
		&a.CreatedAt, &a.UpdatedAt,
		&a.Favorited, &a.FavoritesCount,
		&a.Author.Username, &a.Author.Bio, &a.Author.Image, &a.Author.Following,
	)
	return a, err
}

// Create inserts a new article and returns it as its author sees it.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Article, error) {
	articleID, err := identity.NewULID(time.Now().UTC())
	if err != nil {
		return Article{}, err
	}

	tags := in.TagList
	if tags == nil {
		tags = []string{}
	}

	var a Article
	err = s.pool.QueryRow(ctx,
		`with inserted_article as (
		     insert into article (article_id, user_id, slug, title, description, body, tag_list)
		     values ($1, $2, $3, $4, $5, $6, $7)
		     returning slug, title, description, body, tag_list, created_at, updated_at
		 )
		 select
		     inserted_article.*,
		     false as favorited,
		     0::int8 as favorites_count,
		     username,
		     bio,
		     image,
		     false as following_author
		 from inserted_article
		 inner join "user" on user_id = $2`,
		articleID, in.AuthorID, in.Slug, in.Title, in.Description, in.Body, tags,
	).Scan(
		&a.Slug, &a.Title, &a.Description, &a.Body, &a.TagList,
		&a.CreatedAt, &a.UpdatedAt,
		&a.Favorited, &a.FavoritesCount,
		&a.Author.Username, &a.Author.Bio, &a.Author.Image, &a.Author.Following,
	)
	if err != nil {
		if pgIsUniqueViolation(err, "article_slug_key") {
			return Article{}, ErrDuplicateSlug
		}
		return Article{}, err
	}
	return a, nil
}

// GetBySlug returns one article as seen by viewerID (empty for anonymous).
func (s *PostgresStore) GetBySlug(ctx context.Context, slug, viewerID string) (Article, error) {
	a, err := scanArticle(s.pool.QueryRow(ctx,
		`select `+articleColumns+`
		   from article
		  inner join "user" author using (user_id)
		  where slug = $2`,
		textOrNil(viewerID), slug,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

func (s *PostgresStore) articleByID(ctx context.Context, articleID, viewerID string) (Article, error) {
	a, err := scanArticle(s.pool.QueryRow(ctx,
		`select `+articleColumns+`
		   from article
		  inner join "user" author using (user_id)
		  where article_id = $2`,
		textOrNil(viewerID), articleID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// Update applies an owner-guarded partial update. The statement combines the
// (slug, owner) scoped update with a key-only existence probe so the outcome
// can be classified without a prior read; the updated row is then re-read by
// id so the response reflects favorites and authorship the same way every
// other endpoint does.
func (s *PostgresStore) Update(ctx context.Context, slug, ownerID string, in UpdateInput) (Article, ownership.Outcome, error) {
	var (
		existed   bool
		articleID *string
	)
	err := s.pool.QueryRow(ctx,
		`with updated_article as (
		     update article
		        set slug = coalesce($3, slug),
		            title = coalesce($4, title),
		            description = coalesce($5, description),
		            body = coalesce($6, body),
		            updated_at = now()
		      where slug = $1 and user_id = $2
		      returning article_id
		 )
		 select
		     exists(select 1 from article where slug = $1) as existed,
		     (select article_id from updated_article) as article_id`,
		slug, ownerID, in.Slug, in.Title, in.Description, in.Body,
	).Scan(&existed, &articleID)
	if err != nil {
		if pgIsUniqueViolation(err, "article_slug_key") {
			return Article{}, ownership.NotFound, ErrDuplicateSlug
		}
		return Article{}, ownership.NotFound, err
	}

	outcome, err := ownership.Classify(existed, articleID != nil)
	if err != nil {
		return Article{}, outcome, err
	}
	if outcome != ownership.Success {
		return Article{}, outcome, nil
	}

	a, err := s.articleByID(ctx, *articleID, ownerID)
	if err != nil {
		return Article{}, outcome, err
	}
	return a, outcome, nil
}

// Delete removes an article iff ownerID owns it, classifying the outcome in
// the same statement.
func (s *PostgresStore) Delete(ctx context.Context, slug, ownerID string) (ownership.Outcome, error) {
	var existed, deleted bool
	err := s.pool.QueryRow(ctx,
		`with deleted_article as (
		     delete from article
		      where slug = $1 and user_id = $2
		      returning 1
		 )
		 select
		     exists(select 1 from article where slug = $1) as existed,
		     exists(select 1 from deleted_article) as deleted`,
		slug, ownerID,
	).Scan(&existed, &deleted)
	if err != nil {
		return ownership.NotFound, err
	}
	return ownership.Classify(existed, deleted)
}

// Favorite records a favorite (idempotent) and returns the fresh article.
func (s *PostgresStore) Favorite(ctx context.Context, slug, userID string) (Article, error) {
	var articleID string
	err := s.pool.QueryRow(ctx,
		`with selected_article as (
		     select article_id from article where slug = $1
		 ),
		 inserted_favorite as (
		     insert into article_favorite (article_id, user_id)
		     select article_id, $2 from selected_article
		     on conflict do nothing
		 )
		 select article_id from selected_article`,
		slug, userID,
	).Scan(&articleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, err
	}
	return s.articleByID(ctx, articleID, userID)
}

// Unfavorite removes a favorite (idempotent) and returns the fresh article.
func (s *PostgresStore) Unfavorite(ctx context.Context, slug, userID string) (Article, error) {
	var articleID string
	err := s.pool.QueryRow(ctx,
		`with selected_article as (
		     select article_id from article where slug = $1
		 ),
		 deleted_favorite as (
		     delete from article_favorite
		      where article_id = (select article_id from selected_article)
		        and user_id = $2
		 )
		 select article_id from selected_article`,
		slug, userID,
	).Scan(&articleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, err
	}
	return s.articleByID(ctx, articleID, userID)
}

// List returns up to 20 articles matching q, newest first.
func (s *PostgresStore) List(ctx context.Context, q ListQuery, viewerID string) ([]Article, error) {
	rows, err := s.pool.Query(ctx,
		`select `+articleColumns+`
		   from article
		  inner join "user" author using (user_id)
		  where ($2::timestamptz is null or $2 > article.created_at)
		    and ($3::text is null or tag_list @> array[$3])
		    and ($4::text is null or author.username = $4)
		    and ($5::text is null or exists(
		            select 1
		              from "user" u
		             inner join article_favorite fav using (user_id)
		             where u.username = $5
		               and fav.article_id = article.article_id
		        ))
		  order by article.created_at desc
		  limit 20`,
		textOrNil(viewerID), q.Cursor, q.Tag, q.Author, q.FavoritedBy,
	)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// Feed returns up to 20 articles by authors userID follows, newest first.
func (s *PostgresStore) Feed(ctx context.Context, q FeedQuery, userID string) ([]Article, error) {
	rows, err := s.pool.Query(ctx,
		`select
		     slug,
		     title,
		     description,
		     body,
		     tag_list,
		     article.created_at,
		     article.updated_at,
		     exists(
		         select 1 from article_favorite
		          where article_id = article.article_id and user_id = $1
		     ) as favorited,
		     (select count(*) from article_favorite fav where fav.article_id = article.article_id) as favorites_count,
		     author.username,
		     author.bio,
		     author.image,
		     true as following_author
		   from follow
		  inner join article on followed_user_id = article.user_id
		  inner join "user" author using (user_id)
		  where following_user_id = $1
		    and ($2::timestamptz is null or $2 > article.created_at)
		  order by article.created_at desc
		  limit 20`,
		userID, q.Cursor,
	)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// Tags returns every distinct tag in use, sorted.
func (s *PostgresStore) Tags(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`select distinct tag
		   from article, unnest(article.tag_list) tags(tag)
		  order by tag`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Comments returns the comments on an article, oldest first.
func (s *PostgresStore) Comments(ctx context.Context, slug, viewerID string) ([]Comment, error) {
	var articleID string
	err := s.pool.QueryRow(ctx,
		`select article_id from article where slug = $1`, slug,
	).Scan(&articleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`select
		     comment_id,
		     comment.created_at,
		     comment.updated_at,
		     comment.body,
		     author.username,
		     author.bio,
		     author.image,
		     exists(
		         select 1 from follow
		          where followed_user_id = author.user_id and following_user_id = $1
		     ) as following_author
		   from article_comment comment
		  inner join "user" author using (user_id)
		  where article_id = $2
		  order by created_at`,
		textOrNil(viewerID), articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(
			&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Body,
			&c.Author.Username, &c.Author.Bio, &c.Author.Image, &c.Author.Following,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddComment inserts a comment on the article named by slug.
func (s *PostgresStore) AddComment(ctx context.Context, slug, authorID, body string) (Comment, error) {
	var c Comment
	err := s.pool.QueryRow(ctx,
		`with inserted_comment as (
		     insert into article_comment (article_id, user_id, body)
		     select article_id, $1, $2
		       from article
		      where slug = $3
		     returning comment_id, created_at, updated_at, body
		 )
		 select
		     comment_id,
		     comment.created_at,
		     comment.updated_at,
		     body,
		     author.username,
		     author.bio,
		     author.image,
		     false as following_author
		 from inserted_comment comment
		 inner join "user" author on user_id = $1`,
		authorID, body, slug,
	).Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Body,
		&c.Author.Username, &c.Author.Bio, &c.Author.Image, &c.Author.Following,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

// DeleteComment removes a comment iff ownerID wrote it, classifying the
// outcome in the same statement. The existence probe is scoped by comment id
// and article slug only, never by owner.
func (s *PostgresStore) DeleteComment(ctx context.Context, slug string, commentID int64, ownerID string) (ownership.Outcome, error) {
	var existed, deleted bool
	err := s.pool.QueryRow(ctx,
		`with deleted_comment as (
		     delete from article_comment
		      where comment_id = $1
		        and article_id = (select article_id from article where slug = $2)
		        and user_id = $3
		      returning 1
		 )
		 select
		     exists(
		         select 1 from article_comment
		          inner join article using (article_id)
		          where comment_id = $1 and slug = $2
		     ) as existed,
		     exists(select 1 from deleted_comment) as deleted`,
		commentID, slug, ownerID,
	).Scan(&existed, &deleted)
	if err != nil {
		return ownership.NotFound, err
	}
	return ownership.Classify(existed, deleted)
}

func collectArticles(rows pgx.Rows) ([]Article, error) {
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		var a Article
		if err := rows.Scan(
			&a.Slug, &a.Title, &a.Description, &a.Body, &a.TagList,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Favorited, &a.FavoritesCount,
			&a.Author.Username, &a.Author.Bio, &a.Author.Image, &a.Author.Following,
		); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// textOrNil passes empty strings as SQL nulls.
func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func pgIsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && strings.EqualFold(pgErr.ConstraintName, constraint)
}
