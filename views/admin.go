package views

import (
	"github.com/a-h/templ"

	landscaping "github.com/Jt-schofield1/landscaping-website"
	"github.com/Jt-schofield1/landscaping-website/content"
)

const (
	inputClass  = "mt-1 w-full rounded border border-stone-300 px-3 py-2"
	buttonClass = "rounded bg-green-800 px-4 py-2 text-sm font-medium text-white hover:bg-green-900"
	subtleClass = "rounded border border-stone-300 px-4 py-2 text-sm font-medium hover:bg-stone-100"
)

func writeAdminHead(p *page, cfg landscaping.SiteConfig, title string) {
	p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	p.raw(`<meta name="robots" content="noindex, nofollow">`)
	p.raw("<title>").text(title + " | " + cfg.Name + " Admin").raw("</title>")
	p.raw(`<link rel="stylesheet" href="/public/styles.css">`)
	p.raw(`</head><body class="bg-stone-50 text-stone-900"><main class="mx-auto max-w-4xl px-4 py-10">`)
}

func writeAdminFoot(p *page) {
	p.raw("</main></body></html>")
}

func csrfField(p *page, token string) {
	if token != "" {
		p.raw(`<input type="hidden" name="_csrf"`).attr("value", token).raw(">")
	}
}

func notice(p *page, message, errMsg string) {
	if message != "" {
		p.raw(`<p class="mb-4 rounded bg-green-50 px-4 py-2 text-green-900" role="status">`).text(message).raw("</p>")
	}
	if errMsg != "" {
		p.raw(`<p class="mb-4 rounded bg-red-50 px-4 py-2 text-red-900" role="alert">`).text(errMsg).raw("</p>")
	}
}

// AdminLogin renders the password form.
func AdminLogin(cfg landscaping.SiteConfig, showError bool, csrfToken string) templ.Component {
	return component(func(p *page) {
		writeAdminHead(p, cfg, "Sign in")
		p.raw(`<h1 class="mb-6 text-2xl font-bold">Admin sign in</h1>`)
		if showError {
			notice(p, "", "Incorrect password.")
		}
		p.raw(`<form method="post" action="/admin/login/" class="max-w-sm space-y-4">`)
		csrfField(p, csrfToken)
		p.raw(`<label class="block">Password<input type="password" name="password" required autofocus autocomplete="current-password"`).attr("class", inputClass).raw("></label>")
		p.raw("<button").attr("class", buttonClass).raw(` type="submit">Sign in</button></form>`)
		writeAdminFoot(p)
	})
}

// AdminDashboard lists every post, drafts included, with edit, publish and
// delete actions.
func AdminDashboard(cfg landscaping.SiteConfig, posts []landscaping.BlogPost, message, csrfToken string) templ.Component {
	return component(func(p *page) {
		writeAdminHead(p, cfg, "Blog posts")
		p.raw(`<div class="mb-6 flex items-center justify-between"><h1 class="text-2xl font-bold">Blog posts</h1><div class="flex gap-2">`)
		p.raw("<a").attr("class", buttonClass).raw(` href="/admin/posts/new/">New post</a>`)
		p.raw(`<form method="post" action="/admin/logout/">`)
		csrfField(p, csrfToken)
		p.raw("<button").attr("class", subtleClass).raw(` type="submit">Sign out</button></form></div></div>`)
		notice(p, message, "")
		if len(posts) == 0 {
			p.raw(`<p class="text-stone-500">No posts yet.</p>`)
			writeAdminFoot(p)
			return
		}
		p.raw(`<table class="w-full text-left text-sm"><thead><tr><th class="py-2">Title</th><th>Status</th><th>Created</th><th></th></tr></thead><tbody>`)
		for _, post := range posts {
			id := PathEscape(post.ID)
			p.raw(`<tr class="border-t border-stone-200"><td class="py-3">`)
			p.raw("<a").attr("href", "/admin/posts/"+id+"/").raw(` class="font-medium hover:underline">`).text(post.Title).raw("</a>")
			p.raw(`<div class="text-xs text-stone-500">/blog/`).text(post.Slug).raw("/</div></td>")
			if post.Published {
				p.raw(`<td><span class="rounded bg-green-100 px-2 py-0.5 text-xs text-green-900">Published</span></td>`)
			} else {
				p.raw(`<td><span class="rounded bg-stone-200 px-2 py-0.5 text-xs">Draft</span></td>`)
			}
			p.raw("<td><time").attr("datetime", isoDate(post.CreatedAt)).raw(">").text(landscaping.FormatDate(post.CreatedAt)).raw("</time></td>")
			p.raw(`<td class="flex justify-end gap-2 py-3">`)
			p.raw("<form").attr("action", "/admin/posts/"+id+"/toggle/").raw(` method="post">`)
			csrfField(p, csrfToken)
			label := "Publish"
			if post.Published {
				label = "Unpublish"
			}
			p.raw("<button").attr("class", subtleClass).raw(` type="submit">`).text(label).raw("</button></form>")
			p.raw("<a").attr("class", subtleClass).attr("href", "/admin/posts/"+id+"/delete/").raw(">Delete</a>")
			p.raw("</td></tr>")
		}
		p.raw("</tbody></table>")
		writeAdminFoot(p)
	})
}

// AdminEditor renders the post form. The form posts every button to the same
// handler; image files ride along in the multipart body.
func AdminEditor(cfg landscaping.SiteConfig, ed landscaping.EditorPage) templ.Component {
	return component(func(p *page) {
		title := "New post"
		if !ed.Creating() {
			title = "Edit post"
		}
		writeAdminHead(p, cfg, title)
		p.raw(`<p class="mb-4"><a href="/admin/" class="text-sm text-green-800 hover:underline">&larr; All posts</a></p>`)
		p.raw(`<h1 class="mb-6 text-2xl font-bold">`).text(title).raw("</h1>")
		notice(p, ed.Message, ed.Error)

		in := ed.Post
		p.raw(`<form method="post" action="/admin/posts/" enctype="multipart/form-data" class="space-y-4">`)
		csrfField(p, ed.CSRFToken)
		p.raw(`<input type="hidden" name="id"`).attr("value", in.ID).raw(">")
		published := "false"
		if ed.Published {
			published = "true"
		}
		p.raw(`<input type="hidden" name="published"`).attr("value", published).raw(">")

		textField(p, "Title", "title", in.Title, true)
		textField(p, "Slug", "slug", in.Slug, false)
		p.raw(`<p class="text-xs text-stone-500">Leave the slug empty to derive it from the title.</p>`)
		textField(p, "Excerpt", "excerpt", in.Excerpt, true)
		p.raw(`<label class="block">Content<textarea name="content" rows="16" required`).attr("class", inputClass+" font-mono").raw(">")
		p.text(in.Content).raw("</textarea></label>")
		p.raw(`<p class="text-xs text-stone-500">Separate paragraphs with a blank line. Wrap text in **double asterisks** for bold; a paragraph that is entirely bold becomes a heading.</p>`)
		textField(p, "Cover image URL", "image_url", in.ImageURL, false)
		p.raw(`<label class="block">Upload cover image<input type="file" name="file" accept="image/jpeg,image/png,image/webp,image/gif" class="mt-1 block"></label>`)
		if cover := content.SafeURL(in.ImageURL); cover != "" {
			p.raw(`<img class="h-32 rounded object-cover" src="`).raw(cover).raw(`" alt="Current cover image">`)
		}

		p.raw(`<div class="flex flex-wrap gap-2 pt-2">`)
		actionButton(p, "preview", "Preview", subtleClass)
		actionButton(p, "save", "Save", subtleClass)
		if ed.Published {
			actionButton(p, "unpublish", "Unpublish", subtleClass)
		} else {
			actionButton(p, "publish", "Publish", buttonClass)
		}
		p.raw("</div></form>")

		if !ed.Creating() {
			p.raw(`<p class="mt-6 flex gap-4 text-sm">`)
			if ed.Published {
				p.raw("<a").attr("href", "/blog/"+PathEscape(in.Slug)+"/").raw(` class="text-green-800 hover:underline">View post</a>`)
			}
			p.raw("<a").attr("href", "/admin/posts/"+PathEscape(in.ID)+"/delete/").raw(` class="text-red-800 hover:underline">Delete post</a></p>`)
		}

		if ed.Preview {
			p.raw(`<section class="mt-10 rounded-lg border border-dashed border-stone-300 bg-white p-6"><h2 class="mb-4 text-xs uppercase tracking-wide text-stone-500">Preview</h2><article class="preview">`)
			writeArticle(p, in.Title, in.Excerpt, in.ImageURL, content.Format(in.Content))
			p.raw("</article></section>")
		}
		writeAdminFoot(p)
	})
}

func textField(p *page, label, name, value string, required bool) {
	p.raw(`<label class="block">`).text(label).raw(`<input type="text"`).attr("name", name).attr("value", value).attr("class", inputClass)
	if required {
		p.raw(" required")
	}
	p.raw("></label>")
}

func actionButton(p *page, action, label, class string) {
	p.raw(`<button type="submit" name="action"`).attr("value", action).attr("class", class).raw(">").text(label).raw("</button>")
}

// AdminConfirmDelete asks before a post is removed for good.
func AdminConfirmDelete(cfg landscaping.SiteConfig, post landscaping.BlogPost, csrfToken string) templ.Component {
	return component(func(p *page) {
		writeAdminHead(p, cfg, "Delete post")
		p.raw(`<h1 class="mb-4 text-2xl font-bold">Delete post?</h1>`)
		p.raw(`<p class="mb-6">&ldquo;`).text(post.Title).raw(`&rdquo; will be removed permanently. This cannot be undone.</p>`)
		p.raw("<form").attr("action", "/admin/posts/"+PathEscape(post.ID)+"/delete/").raw(` method="post" class="flex gap-2">`)
		csrfField(p, csrfToken)
		p.raw(`<button type="submit" class="rounded bg-red-800 px-4 py-2 text-sm font-medium text-white hover:bg-red-900">Delete</button>`)
		p.raw("<a").attr("class", subtleClass).raw(` href="/admin/">Cancel</a></form>`)
		writeAdminFoot(p)
	})
}
