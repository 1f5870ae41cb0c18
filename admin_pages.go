package landscaping

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// adminNotices are the confirmations the dashboard and editor show after a
// redirect, keyed by the msg query parameter.
var adminNotices = map[string]string{
	"created":     "Post created!",
	"updated":     "Post updated!",
	"published":   "Post published.",
	"unpublished": "Post moved back to drafts.",
	"deleted":     "Post deleted.",
}

const (
	msgRequiredFields = "Please fill in all required fields (title, slug, excerpt, content)."
	msgSaveFailed     = "Failed to save post. Please try again."
)

// requireAdminPage sends visitors without the admin secret to the sign-in page.
func (a *App) requireAdminPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, adminPath)
		}
		return next(c)
	}
}

func (a *App) handleAdmin(c echo.Context) error {
	if !a.IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, adminNotices[c.QueryParam("msg")])
}

func (a *App) handleAdminLogin(c echo.Context) error {
	pass := c.FormValue("password")
	if !a.checkSecret(pass) {
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
	}
	if err := setAdminSession(c, pass); err != nil {
		return err
	}
	c.Logger().Infof("admin signed in from %s", c.RealIP())
	return c.Redirect(http.StatusSeeOther, adminPath)
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, adminPath)
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}

func (a *App) handleAdminNew(c echo.Context) error {
	return Render(c, a.Views.AdminEditor(EditorPage{CSRFToken: CsrfToken(c)}))
}

func (a *App) handleAdminEdit(c echo.Context) error {
	post, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return Render(c, a.Views.AdminEditor(EditorPage{
		Post:      post.Input(),
		Published: post.Published,
		Message:   adminNotices[c.QueryParam("msg")],
		CSRFToken: CsrfToken(c),
	}))
}

// editorForm reads the editor fields. The hidden published field carries the
// stored state so a plain save never flips it.
func editorForm(c echo.Context) (PostInput, bool) {
	published := c.FormValue("published") == "true"
	return PostInput{
		ID:       strings.TrimSpace(c.FormValue("id")),
		Title:    c.FormValue("title"),
		Slug:     c.FormValue("slug"),
		Excerpt:  c.FormValue("excerpt"),
		Content:  c.FormValue("content"),
		ImageURL: c.FormValue("image_url"),
	}, published
}

// handleAdminSave handles every editor button: preview re-renders the form
// with the formatted post, save/publish/unpublish create or replace the post.
// A chosen image file is uploaded first and becomes the cover image.
func (a *App) handleAdminSave(c echo.Context) error {
	in, published := editorForm(c)
	page := EditorPage{Post: in, Published: published, CSRFToken: CsrfToken(c)}

	if file, err := c.FormFile(uploadField); err == nil {
		img, err := a.acceptUpload(c, file)
		if err != nil {
			return a.renderEditorError(c, page, err)
		}
		page.Post.ImageURL = img.URL
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}

	notice := "updated"
	switch c.FormValue("action") {
	case "preview":
		page.Preview = true
		return Render(c, a.Views.AdminEditor(page))
	case "publish":
		page.Published = true
		notice = "published"
	case "unpublish":
		page.Published = false
		notice = "unpublished"
	}
	in = page.Post
	in.Published = &page.Published

	ctx := c.Request().Context()
	var (
		post BlogPost
		err  error
	)
	if page.Creating() {
		post, err = a.Store.CreatePost(ctx, in)
		notice = "created"
	} else {
		post, err = a.Store.UpdatePost(ctx, in.ID, in)
	}
	if err != nil {
		return a.renderEditorError(c, page, err)
	}
	a.Cache.Invalidate()
	c.Logger().Infof("admin saved post %s (%s, published=%t)", post.ID, post.Slug, post.Published)
	return c.Redirect(http.StatusSeeOther, editorURL(post.ID, notice))
}

// renderEditorError re-renders the submitted form with a message for err.
// The fields are kept as typed.
func (a *App) renderEditorError(c echo.Context, page EditorPage, err error) error {
	code, body, ok := describeError(err)
	var verr *ValidationError
	switch {
	case !ok:
		c.Logger().Errorf("admin save: %v", err)
		page.Error = msgSaveFailed
	case errors.As(err, &verr) && verr.missingFields():
		page.Error = msgRequiredFields
	case errors.Is(err, ErrSlugTaken):
		page.Error = "That slug is already used by another post."
	default:
		page.Error = body.Error
	}
	return RenderStatus(c, code, a.Views.AdminEditor(page))
}

func (a *App) handleAdminToggle(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Store.GetPost(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	in := post.Input()
	flipped := !post.Published
	in.Published = &flipped
	post, err = a.Store.UpdatePost(ctx, post.ID, in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	c.Logger().Infof("admin set post %s published=%t", post.ID, post.Published)
	if post.Published {
		return c.Redirect(http.StatusSeeOther, adminPath+"?msg=published")
	}
	return c.Redirect(http.StatusSeeOther, adminPath+"?msg=unpublished")
}

func (a *App) handleAdminConfirmDelete(c echo.Context) error {
	post, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return Render(c, a.Views.AdminConfirmDelete(post, CsrfToken(c)))
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	id := c.Param("id")
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	a.Cache.Invalidate()
	c.Logger().Infof("admin deleted post %s", id)
	return c.Redirect(http.StatusSeeOther, adminPath+"?msg=deleted")
}

func editorURL(id, notice string) string {
	return "/admin/posts/" + url.PathEscape(id) + "/?msg=" + url.QueryEscape(notice)
}
