package landscaping

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Jt-schofield1/landscaping-website/storage"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// describeError maps err to a status and a client-facing body. Unknown
// errors map to 500 with ok false; callers log those.
func describeError(err error) (code int, body errorBody, ok bool) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Error: "Unauthorized"}, true
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: verr.Error(), Fields: verr.Fields}, true
	case errors.Is(err, ErrUploadRejected):
		return http.StatusBadRequest, errorBody{Error: err.Error()}, true
	case errors.Is(err, ErrSlugTaken):
		return http.StatusConflict, errorBody{Error: "Slug already in use", Fields: map[string]string{"slug": ErrSlugTaken.Error()}}, true
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound, errorBody{Error: "Not found"}, true
	case errors.Is(err, storage.ErrObjectExists):
		return http.StatusConflict, errorBody{Error: "Object already exists"}, true
	}
	return http.StatusInternalServerError, errorBody{Error: "Internal server error"}, false
}

// apiError converts err into its JSON error response. Store failures are
// logged and reported with a generic message.
func apiError(c echo.Context, err error) error {
	code, body, ok := describeError(err)
	if !ok {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	return c.JSON(code, body)
}

func (a *App) handleListPublished(c echo.Context) error {
	posts, err := a.Cache.ListPublished(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPublished(c echo.Context) error {
	post, err := a.Cache.GetPublished(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleBlogIndex(c echo.Context) error {
	posts, err := a.Cache.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       "Blog | " + a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, "blog"),
		OGType:      "website",
	}
	return Render(c, a.Views.BlogIndex(posts, meta))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPublished(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	return Render(c, a.Views.Post(post, a.postMeta(post)))
}

// postMeta builds the page metadata of a published post.
func (a *App) postMeta(post BlogPost) PageMeta {
	return PageMeta{
		Title:       post.Title + " | " + a.Config.Name + " Blog",
		Description: post.Excerpt,
		URL:         BuildURL(a.Config.URL, "blog", post.Slug),
		OGType:      "article",
		Image:       absoluteURL(a.Config.URL, post.ImageURL),
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", a.sitemapFor(posts))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", a.feedFor(posts))
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/")
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/admin\n")
	b.WriteString("\nSitemap: " + a.Config.URL + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		if ok && code < 500 {
			msg := http.StatusText(code)
			if s, isString := he.Message.(string); isString && s != "" {
				msg = s
			}
			_ = c.JSON(code, errorBody{Error: msg})
			return
		}
		_ = apiError(c, err)
		return
	}
	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
