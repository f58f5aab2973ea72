package api

import (
	"time"

	"conduit/cmd/identity"
	"conduit/cmd/internal/articles"
)

// ---- request bodies ----

type registerRequest struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type updateUserRequest struct {
	User struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user"`
}

type createArticleRequest struct {
	Article struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		TagList     []string `json:"tagList"`
	} `json:"article"`
}

type updateArticleRequest struct {
	Article struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	} `json:"article"`
}

type addCommentRequest struct {
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

// ---- response bodies ----

type userResponse struct {
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      string  `json:"bio"`
	Image    *string `json:"image"`
}

type userBody struct {
	User userResponse `json:"user"`
}

type profileResponse struct {
	Username  string  `json:"username"`
	Bio       string  `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

type profileBody struct {
	Profile profileResponse `json:"profile"`
}

type articleResponse struct {
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Body           string          `json:"body"`
	TagList        []string        `json:"tagList"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Favorited      bool            `json:"favorited"`
	FavoritesCount int64           `json:"favoritesCount"`
	Author         profileResponse `json:"author"`
}

type articleBody struct {
	Article articleResponse `json:"article"`
}

type articlesBody struct {
	Articles      []articleResponse `json:"articles"`
	ArticlesCount int               `json:"articlesCount"`
}

type commentResponse struct {
	ID        int64           `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Body      string          `json:"body"`
	Author    profileResponse `json:"author"`
}

type commentBody struct {
	Comment commentResponse `json:"comment"`
}

type commentsBody struct {
	Comments []commentResponse `json:"comments"`
}

type tagsBody struct {
	Tags []string `json:"tags"`
}

// ---- converters ----

// toUserResponse carries the full token string, scheme prefix included, so
// clients can echo it back as the Authorization header verbatim.
func toUserResponse(u identity.User, tok string) userResponse {
	return userResponse{
		Email:    u.Email,
		Token:    tok,
		Username: u.Username,
		Bio:      u.Bio,
		Image:    u.Image,
	}
}

func toProfileResponse(p identity.Profile) profileResponse {
	return profileResponse{
		Username:  p.Username,
		Bio:       p.Bio,
		Image:     p.Image,
		Following: p.Following,
	}
}

func toArticleResponse(a articles.Article) articleResponse {
	tags := a.TagList
	if tags == nil {
		tags = []string{}
	}
	return articleResponse{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      a.Favorited,
		FavoritesCount: a.FavoritesCount,
		Author:         toProfileResponse(a.Author),
	}
}

func toArticlesBody(list []articles.Article) articlesBody {
	out := make([]articleResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toArticleResponse(a))
	}
	return articlesBody{Articles: out, ArticlesCount: len(out)}
}

func toCommentResponse(c articles.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Body:      c.Body,
		Author:    toProfileResponse(c.Author),
	}
}
