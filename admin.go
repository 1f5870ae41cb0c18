package landscaping

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Jt-schofield1/landscaping-website/content"
)

func (a *App) handleAdminList(c echo.Context) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	return c.JSON(http.StatusOK, posts)
}

func bindPostInput(c echo.Context) (PostInput, error) {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return in, fieldError("body", "invalid request body")
	}
	return in, nil
}

func (a *App) handleAdminCreate(c echo.Context) error {
	in, err := bindPostInput(c)
	if err != nil {
		return apiError(c, err)
	}
	post, err := a.Store.CreatePost(c.Request().Context(), in)
	if err != nil {
		return apiError(c, err)
	}
	a.Cache.Invalidate()
	c.Logger().Infof("created post %s (%s)", post.ID, post.Slug)
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handleAdminUpdate(c echo.Context) error {
	in, err := bindPostInput(c)
	if err != nil {
		return apiError(c, err)
	}
	post, err := a.Store.UpdatePost(c.Request().Context(), in.ID, in)
	if err != nil {
		return apiError(c, err)
	}
	a.Cache.Invalidate()
	c.Logger().Infof("updated post %s (published=%t)", post.ID, post.Published)
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminDelete(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return apiError(c, fieldError("id", blankField))
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		return apiError(c, err)
	}
	a.Cache.Invalidate()
	c.Logger().Infof("deleted post %s", id)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// handleAdminPreview renders unsaved post fields with the same formatter the
// public post page uses.
func (a *App) handleAdminPreview(c echo.Context) error {
	in, err := bindPostInput(c)
	if err != nil {
		return apiError(c, err)
	}
	if a.Views.Preview != nil {
		return Render(c, a.Views.Preview(in))
	}
	return Render(c, content.Component(in.Content))
}
