package server

import (
	"net/http"
	"testing"

	"kampus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_Authenticated(t *testing.T) {
	_, app := newTestServer(t)
	acct := signupUser(t, app, "yorumcu_bir")

	var comment models.Comment
	resp := doJSON(t, app, http.MethodPost, "/api/universities/metu/comments", acct.Token,
		map[string]string{"content": "Exchange semester here was great, strong CS partners."}, &comment)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "yorumcu_bir", comment.Username)
	assert.Equal(t, "metu", comment.UniversityID)
	require.NotNil(t, comment.UserID)
	assert.Equal(t, acct.ID, *comment.UserID)
}

func TestCreateComment_Anonymous(t *testing.T) {
	_, app := newTestServer(t)

	t.Run("Valid", func(t *testing.T) {
		var comment models.Comment
		resp := doJSON(t, app, http.MethodPost, "/api/universities/bogazici/comments", "",
			map[string]string{
				"name":    "Çağla",
				"surname": "Öztürk",
				"email":   "cagla@example.com",
				"content": "The Economics department has excellent European partners.",
			}, &comment)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Çağla", comment.Name)
		assert.Nil(t, comment.UserID)
	})

	t.Run("RejectsDigitsInName", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/universities/bogazici/comments", "",
			map[string]string{
				"name":    "Deniz99",
				"surname": "Öztürk",
				"email":   "deniz@example.com",
				"content": "This comment should never be stored at all.",
			}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("RejectsShortContent", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/universities/bogazici/comments", "",
			map[string]string{
				"name":    "Deniz",
				"surname": "Öztürk",
				"email":   "deniz@example.com",
				"content": "kısa",
			}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UnknownUniversity", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/universities/oxford/comments", "",
			map[string]string{
				"name":    "Deniz",
				"surname": "Öztürk",
				"email":   "deniz@example.com",
				"content": "A perfectly valid comment for a missing university.",
			}, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetComments(t *testing.T) {
	_, app := newTestServer(t)
	acct := signupUser(t, app, "yorumcu_iki")

	resp := doJSON(t, app, http.MethodPost, "/api/universities/ege/comments", acct.Token,
		map[string]string{"content": "Agriculture exchange with Wageningen is the highlight."}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/universities/ege/comments", "",
		map[string]string{
			"name":    "Mert",
			"surname": "Kaya",
			"email":   "mert@example.com",
			"content": "International Relations sends people to Sciences Po.",
		}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("NewestFirstAndScoped", func(t *testing.T) {
		var comments []models.Comment
		resp := doJSON(t, app, http.MethodGet, "/api/universities/ege/comments", "", nil, &comments)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, comments, 2)
		assert.Equal(t, "Mert", comments[0].Name)
		assert.Equal(t, "yorumcu_iki", comments[1].Username)
	})

	t.Run("EmptyForUncommentedUniversity", func(t *testing.T) {
		var comments []models.Comment
		resp := doJSON(t, app, http.MethodGet, "/api/universities/itu/comments", "", nil, &comments)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, comments)
	})

	t.Run("UnknownUniversity", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/universities/oxford/comments", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("CountEmbeddedInDetail", func(t *testing.T) {
		var out struct {
			CommentCount int `json:"comment_count"`
		}
		resp := doJSON(t, app, http.MethodGet, "/api/universities/ege", "", nil, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, out.CommentCount)
	})
}
