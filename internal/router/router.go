// Package router wires the HTTP surface of the application: public pages,
// the registration and login forms, and the protected article management
// routes behind the auth gate.
package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/artcls/internal/authenticator"
	"github.com/patric-chuzhbe/artcls/internal/flash"
	"github.com/patric-chuzhbe/artcls/internal/gzippedhttp"
	"github.com/patric-chuzhbe/artcls/internal/logger"
	"github.com/patric-chuzhbe/artcls/internal/models"
	"github.com/patric-chuzhbe/artcls/internal/service"
	"github.com/patric-chuzhbe/artcls/internal/session"
	"github.com/patric-chuzhbe/artcls/internal/view"
)

type blogService interface {
	RegisterUser(ctx context.Context, form models.RegisterForm) (service.FieldErrors, error)
	LoginUser(ctx context.Context, form models.LoginForm) error
	AllArticles(ctx context.Context) ([]models.Article, error)
	ArticleByID(ctx context.Context, id int) (*models.Article, error)
	ArticlesByAuthor(ctx context.Context, author string) ([]models.Article, error)
	CreateArticle(ctx context.Context, form models.ArticleForm, author string) (service.FieldErrors, error)
	ArticleForEdit(ctx context.Context, id int, editor string) (*models.Article, error)
	UpdateArticle(ctx context.Context, id int, form models.ArticleForm, editor string) (service.FieldErrors, error)
	DeleteArticle(ctx context.Context, id int, requester string) error
}

type sessionWriter interface {
	LogIn(response http.ResponseWriter, username string) error
	LogOut(response http.ResponseWriter)
}

const noArticlesMsg = "No Articles Found"

// Router holds the handler dependencies.
type Router struct {
	svc      blogService
	views    *view.Views
	notices  *flash.Stash
	sessions sessionWriter
}

// New builds the chi mux with the logging, compression and authentication
// middleware applied, public routes registered directly and protected
// routes grouped behind the auth gate.
func New(
	svc blogService,
	views *view.Views,
	notices *flash.Stash,
	sessions sessionWriter,
	auth authenticator.Authenticator,
) http.Handler {
	r := &Router{
		svc:      svc,
		views:    views,
		notices:  notices,
		sessions: sessions,
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(gzippedhttp.GzipResponse)
	router.Use(auth.Authenticate)

	router.Get(`/`, r.GetHome)
	router.Get(`/about`, r.GetAbout)
	router.Get(`/articles`, r.GetArticles)
	router.Get(`/article/{id}`, r.GetArticle)
	router.Get(`/register`, r.GetRegister)
	router.Post(`/register`, r.PostRegister)
	router.Get(`/login`, r.GetLogin)
	router.Post(`/login`, r.PostLogin)

	router.Group(func(protected chi.Router) {
		protected.Use(auth.RequireLogin)
		protected.Get(`/logout`, r.GetLogout)
		protected.Get(`/dashboard`, r.GetDashboard)
		protected.Get(`/add_article`, r.GetAddArticle)
		protected.Post(`/add_article`, r.PostAddArticle)
		protected.Get(`/edit_article/{id}`, r.GetEditArticle)
		protected.Post(`/edit_article/{id}`, r.PostEditArticle)
		protected.Post(`/delete_article/{id}`, r.PostDeleteArticle)
	})

	return router
}

// GetHome renders the static home view.
func (r *Router) GetHome(response http.ResponseWriter, request *http.Request) {
	r.render(response, request, http.StatusOK, "home", view.Data{Title: "Home"})
}

// GetAbout renders the static about view.
func (r *Router) GetAbout(response http.ResponseWriter, request *http.Request) {
	r.render(response, request, http.StatusOK, "about", view.Data{Title: "About"})
}

// GetArticles renders the public article list.
func (r *Router) GetArticles(response http.ResponseWriter, request *http.Request) {
	articles, err := r.svc.AllArticles(request.Context())
	if err != nil {
		r.serverError(response, err)
		return
	}

	data := view.Data{Title: "Articles", Articles: articles}
	if len(articles) == 0 {
		data.Msg = noArticlesMsg
	}
	r.render(response, request, http.StatusOK, "articles", data)
}

// GetArticle renders a single public article, or the not-found page when
// the id matches nothing.
func (r *Router) GetArticle(response http.ResponseWriter, request *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(request, "id"))
	if err != nil {
		r.render(response, request, http.StatusNotFound, "article_not_found", view.Data{Title: "Not Found"})
		return
	}

	article, err := r.svc.ArticleByID(request.Context(), id)
	if errors.Is(err, models.ErrArticleNotFound) {
		r.render(response, request, http.StatusNotFound, "article_not_found", view.Data{Title: "Not Found"})
		return
	}
	if err != nil {
		r.serverError(response, err)
		return
	}

	r.render(response, request, http.StatusOK, "article", view.Data{Title: article.Title, Article: article})
}

// GetRegister renders the empty registration form.
func (r *Router) GetRegister(response http.ResponseWriter, request *http.Request) {
	r.render(response, request, http.StatusOK, "register", view.Data{Title: "Register"})
}

// PostRegister handles the registration form submission. Field errors
// redisplay the form without any persistence side effect.
func (r *Router) PostRegister(response http.ResponseWriter, request *http.Request) {
	form := models.RegisterForm{
		Name:     request.PostFormValue("name"),
		Username: request.PostFormValue("username"),
		Email:    request.PostFormValue("email"),
		Password: request.PostFormValue("password"),
		Confirm:  request.PostFormValue("confirm"),
	}

	fieldErrors, err := r.svc.RegisterUser(request.Context(), form)
	if err != nil {
		r.serverError(response, err)
		return
	}
	if len(fieldErrors) > 0 {
		r.render(response, request, http.StatusOK, "register", view.Data{
			Title: "Register",
			Form: map[string]string{
				"name":     form.Name,
				"username": form.Username,
				"email":    form.Email,
			},
			FieldErrors: fieldErrors,
		})
		return
	}

	r.redirectWithNotice(response, request, "/login", flash.LevelSuccess, "You are now registered and can log in")
}

// GetLogin renders the empty login form.
func (r *Router) GetLogin(response http.ResponseWriter, request *http.Request) {
	r.render(response, request, http.StatusOK, "login", view.Data{Title: "Login"})
}

// PostLogin verifies the submitted credentials. Both failure modes
// re-render the login form with a page-level error and leave the session
// untouched.
func (r *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	form := models.LoginForm{
		Username: request.PostFormValue("username"),
		Password: request.PostFormValue("password"),
	}

	err := r.svc.LoginUser(request.Context(), form)
	switch {
	case errors.Is(err, models.ErrUnknownUser):
		r.render(response, request, http.StatusOK, "login", view.Data{
			Title: "Login",
			Error: "Username not found",
			Form:  map[string]string{"username": form.Username},
		})
		return

	case errors.Is(err, models.ErrInvalidCredentials):
		r.render(response, request, http.StatusOK, "login", view.Data{
			Title: "Login",
			Error: "Invalid login",
			Form:  map[string]string{"username": form.Username},
		})
		return

	case err != nil:
		r.serverError(response, err)
		return
	}

	if err := r.sessions.LogIn(response, form.Username); err != nil {
		r.serverError(response, err)
		return
	}

	r.redirectWithNotice(response, request, "/dashboard", flash.LevelSuccess, "You are now logged in")
}

// GetLogout clears the session and redirects to the login view.
func (r *Router) GetLogout(response http.ResponseWriter, request *http.Request) {
	r.sessions.LogOut(response)
	r.redirectWithNotice(response, request, "/login", flash.LevelSuccess, "You are now logged out")
}

// GetDashboard renders the authenticated user's own articles.
func (r *Router) GetDashboard(response http.ResponseWriter, request *http.Request) {
	username, _ := session.Username(request.Context())

	articles, err := r.svc.ArticlesByAuthor(request.Context(), username)
	if err != nil {
		r.serverError(response, err)
		return
	}

	data := view.Data{Title: "Dashboard", Articles: articles}
	if len(articles) == 0 {
		data.Msg = noArticlesMsg
	}
	r.render(response, request, http.StatusOK, "dashboard", data)
}

// GetAddArticle renders the empty article creation form.
func (r *Router) GetAddArticle(response http.ResponseWriter, request *http.Request) {
	r.render(response, request, http.StatusOK, "add_article", view.Data{Title: "Add Article"})
}

// PostAddArticle handles the article creation form submission.
func (r *Router) PostAddArticle(response http.ResponseWriter, request *http.Request) {
	username, _ := session.Username(request.Context())
	form := models.ArticleForm{
		Title: request.PostFormValue("title"),
		Body:  request.PostFormValue("body"),
	}

	fieldErrors, err := r.svc.CreateArticle(request.Context(), form, username)
	if err != nil {
		r.serverError(response, err)
		return
	}
	if len(fieldErrors) > 0 {
		r.render(response, request, http.StatusOK, "add_article", view.Data{
			Title:       "Add Article",
			Form:        map[string]string{"title": form.Title, "body": form.Body},
			FieldErrors: fieldErrors,
		})
		return
	}

	r.redirectWithNotice(response, request, "/dashboard", flash.LevelSuccess, "Article Created")
}

// GetEditArticle renders the edit form pre-populated with the article's
// current title and body.
func (r *Router) GetEditArticle(response http.ResponseWriter, request *http.Request) {
	username, _ := session.Username(request.Context())

	id, err := strconv.Atoi(chi.URLParam(request, "id"))
	if err != nil {
		r.redirectWithNotice(response, request, "/dashboard", flash.LevelDanger, "Article not found")
		return
	}

	article, err := r.svc.ArticleForEdit(request.Context(), id, username)
	if r.handleArticleAccessError(response, request, err) {
		return
	}

	r.render(response, request, http.StatusOK, "edit_article", view.Data{
		Title: "Edit Article",
		Form:  map[string]string{"title": article.Title, "body": article.Body},
	})
}

// PostEditArticle overwrites the article's title and body in place.
func (r *Router) PostEditArticle(response http.ResponseWriter, request *http.Request) {
	username, _ := session.Username(request.Context())

	id, err := strconv.Atoi(chi.URLParam(request, "id"))
	if err != nil {
		r.redirectWithNotice(response, request, "/dashboard", flash.LevelDanger, "Article not found")
		return
	}

	form := models.ArticleForm{
		Title: request.PostFormValue("title"),
		Body:  request.PostFormValue("body"),
	}

	fieldErrors, err := r.svc.UpdateArticle(request.Context(), id, form, username)
	if r.handleArticleAccessError(response, request, err) {
		return
	}
	if len(fieldErrors) > 0 {
		r.render(response, request, http.StatusOK, "edit_article", view.Data{
			Title:       "Edit Article",
			Form:        map[string]string{"title": form.Title, "body": form.Body},
			FieldErrors: fieldErrors,
		})
		return
	}

	r.redirectWithNotice(response, request, "/dashboard", flash.LevelSuccess, "Article Updated")
}

// PostDeleteArticle removes the article. There is no confirmation page.
func (r *Router) PostDeleteArticle(response http.ResponseWriter, request *http.Request) {
	username, _ := session.Username(request.Context())

	id, err := strconv.Atoi(chi.URLParam(request, "id"))
	if err != nil {
		r.redirectWithNotice(response, request, "/dashboard", flash.LevelDanger, "Article not found")
		return
	}

	err = r.svc.DeleteArticle(request.Context(), id, username)
	if r.handleArticleAccessError(response, request, err) {
		return
	}

	r.redirectWithNotice(response, request, "/dashboard", flash.LevelSuccess, "Article Deleted")
}

// handleArticleAccessError resolves the recoverable article access errors
// into a danger notice and a dashboard redirect, and everything else into a
// generic server error. It reports whether the response has been written.
func (r *Router) handleArticleAccessError(
	response http.ResponseWriter,
	request *http.Request,
	err error,
) bool {
	switch {
	case err == nil:
		return false

	case errors.Is(err, models.ErrArticleNotFound):
		r.redirectWithNotice(response, request, "/dashboard", flash.LevelDanger, "Article not found")

	case errors.Is(err, models.ErrNotArticleAuthor):
		r.redirectWithNotice(response, request, "/dashboard", flash.LevelDanger, "You can only manage your own articles")

	default:
		r.serverError(response, err)
	}

	return true
}

func (r *Router) render(
	response http.ResponseWriter,
	request *http.Request,
	status int,
	page string,
	data view.Data,
) {
	data.Username, _ = session.Username(request.Context())
	data.Notices = r.notices.Pop(response, request)

	if err := r.views.Render(response, status, page, data); err != nil {
		logger.Log.Debugln("Error rendering the page:", zap.Error(err))
	}
}

func (r *Router) redirectWithNotice(
	response http.ResponseWriter,
	request *http.Request,
	location string,
	level string,
	message string,
) {
	if err := r.notices.Add(response, request, level, message); err != nil {
		r.serverError(response, err)
		return
	}
	http.Redirect(response, request, location, http.StatusFound)
}

func (r *Router) serverError(response http.ResponseWriter, err error) {
	logger.Log.Errorln("Internal server error:", zap.Error(err))
	http.Error(response, "Internal Server Error", http.StatusInternalServerError)
}
