// Package views renders the public blog pages, the admin pages and the
// admin preview.
package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	landscaping "github.com/Jt-schofield1/landscaping-website"
	"github.com/Jt-schofield1/landscaping-website/content"
)

// New returns the ViewFuncs for the site described by cfg.
func New(cfg landscaping.SiteConfig) landscaping.ViewFuncs {
	return landscaping.ViewFuncs{
		BlogIndex: func(posts []landscaping.BlogPost, meta landscaping.PageMeta) templ.Component {
			return BlogIndex(cfg, posts, meta)
		},
		Post: func(post landscaping.BlogPost, meta landscaping.PageMeta) templ.Component {
			return Post(cfg, post, meta)
		},
		Preview:     Preview,
		NotFound:    func() templ.Component { return NotFound(cfg) },
		ServerError: func() templ.Component { return ServerError(cfg) },
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return AdminLogin(cfg, showError, csrfToken)
		},
		AdminDashboard: func(posts []landscaping.BlogPost, message, csrfToken string) templ.Component {
			return AdminDashboard(cfg, posts, message, csrfToken)
		},
		AdminEditor: func(page landscaping.EditorPage) templ.Component {
			return AdminEditor(cfg, page)
		},
		AdminConfirmDelete: func(post landscaping.BlogPost, csrfToken string) templ.Component {
			return AdminConfirmDelete(cfg, post, csrfToken)
		},
	}
}

// page is a small HTML writer. Every text value goes through templ's escaper.
type page struct {
	bytes.Buffer
}

func (p *page) raw(s string) *page {
	p.WriteString(s)
	return p
}

func (p *page) text(s string) *page {
	p.WriteString(templ.EscapeString(s))
	return p
}

func (p *page) attr(name, value string) *page {
	p.WriteString(" " + name + `="`)
	p.WriteString(templ.EscapeString(value))
	p.WriteString(`"`)
	return p
}

// component turns a page builder into a templ.Component.
func component(build func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		build(&p)
		_, err := w.Write(p.Bytes())
		return err
	})
}

func writeHead(p *page, cfg landscaping.SiteConfig, meta landscaping.PageMeta, jsonLD string) {
	p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	p.raw("<title>").text(meta.Title).raw("</title>")
	if meta.Description != "" {
		p.raw(`<meta name="description"`).attr("content", meta.Description).raw(">")
	}
	if meta.URL != "" {
		p.raw(`<link rel="canonical"`).attr("href", meta.URL).raw(">")
		p.raw(`<meta property="og:url"`).attr("content", meta.URL).raw(">")
	}
	p.raw(`<meta property="og:title"`).attr("content", meta.Title).raw(">")
	if meta.OGType != "" {
		p.raw(`<meta property="og:type"`).attr("content", meta.OGType).raw(">")
	}
	if meta.Image != "" {
		p.raw(`<meta property="og:image"`).attr("content", meta.Image).raw(">")
	}
	p.raw(`<meta property="og:site_name"`).attr("content", cfg.Name).raw(">")
	p.raw(`<link rel="alternate" type="application/rss+xml"`).attr("title", cfg.Name+" Blog").attr("href", "/feed.xml").raw(">")
	p.raw(`<link rel="stylesheet" href="/public/styles.css">`)
	if jsonLD != "" {
		// json.Marshal escapes <, > and &, so the payload cannot close the script.
		p.raw(`<script type="application/ld+json">`).raw(jsonLD).raw("</script>")
	}
	p.raw(`</head><body class="bg-stone-50 text-stone-900">`)
	p.raw(`<header class="border-b border-stone-200 bg-white"><nav class="mx-auto flex max-w-5xl items-center justify-between px-4 py-4">`)
	p.raw(`<a href="/" class="text-lg font-semibold">`).text(cfg.Name).raw("</a>")
	p.raw(`<a href="/blog/" class="text-sm font-medium text-green-800 hover:underline">Blog</a>`)
	p.raw("</nav></header>")
}

func writeFoot(p *page, cfg landscaping.SiteConfig) {
	p.raw(`<footer class="mt-16 border-t border-stone-200 py-8 text-center text-sm text-stone-500">`)
	p.text(cfg.Name).raw(` · <a href="/feed.xml" class="hover:underline">RSS</a>`)
	p.raw("</footer></body></html>")
}

// BlogIndex renders the list of published posts.
func BlogIndex(cfg landscaping.SiteConfig, posts []landscaping.BlogPost, meta landscaping.PageMeta) templ.Component {
	return component(func(p *page) {
		writeHead(p, cfg, meta, landscaping.BusinessJsonLD(cfg))
		p.raw(`<main class="mx-auto max-w-5xl px-4 py-12"><h1 class="mb-8 text-3xl font-bold">Blog</h1>`)
		if len(posts) == 0 {
			p.raw(`<p class="text-stone-500">No posts yet. Check back soon.</p>`)
		}
		p.raw(`<div class="grid gap-6">`)
		for _, post := range posts {
			cover := content.SafeURL(post.ImageURL)
			p.raw("<article").attr("class", cardClass(cover != "")).raw(">")
			if cover != "" {
				// SafeURL output is already escaped.
				p.raw(`<img class="h-48 w-full object-cover md:w-64" loading="lazy" src="`).raw(cover).raw(`"`).attr("alt", post.Title).raw(">")
			}
			p.raw(`<div class="flex flex-col gap-2 p-6">`)
			p.raw("<time").attr("datetime", isoDate(post.CreatedAt)).raw(` class="text-xs uppercase tracking-wide text-stone-500">`)
			p.text(landscaping.FormatDate(post.CreatedAt)).raw("</time>")
			p.raw(`<h2 class="text-xl font-semibold"><a`).attr("href", "/blog/"+PathEscape(post.Slug)+"/").raw(">").text(post.Title).raw("</a></h2>")
			p.raw(`<p class="text-stone-700">`).text(post.Excerpt).raw("</p>")
			p.raw("</div></article>")
		}
		p.raw("</div></main>")
		writeFoot(p, cfg)
	})
}

// Post renders a single published post.
func Post(cfg landscaping.SiteConfig, post landscaping.BlogPost, meta landscaping.PageMeta) templ.Component {
	return component(func(p *page) {
		writeHead(p, cfg, meta, landscaping.BlogPostingJsonLD(post, cfg))
		p.raw(`<main class="mx-auto max-w-3xl px-4 py-12"><article>`)
		writeArticle(p, post.Title, post.Excerpt, post.ImageURL, content.Format(post.Content))
		p.raw("<time").attr("datetime", isoDate(post.CreatedAt)).raw(` class="mt-8 block text-sm text-stone-500">`)
		p.text("Published " + landscaping.FormatDate(post.CreatedAt)).raw("</time>")
		p.raw(`</article><p class="mt-12"><a href="/blog/" class="text-green-800 hover:underline">&larr; All posts</a></p></main>`)
		writeFoot(p, cfg)
	})
}

// Preview renders unsaved post fields as the post page body would show them.
func Preview(in landscaping.PostInput) templ.Component {
	return component(func(p *page) {
		p.raw(`<article class="preview">`)
		writeArticle(p, in.Title, in.Excerpt, in.ImageURL, content.Format(in.Content))
		p.raw("</article>")
	})
}

func writeArticle(p *page, title, excerpt, imageURL string, blocks []content.Block) {
	p.raw(`<h1 class="text-4xl font-bold">`).text(title).raw("</h1>")
	if excerpt != "" {
		p.raw(`<p class="mt-4 text-lg text-stone-600">`).text(excerpt).raw("</p>")
	}
	if cover := content.SafeURL(imageURL); cover != "" {
		p.raw(`<img class="mt-8 w-full rounded-lg" src="`).raw(cover).raw(`"`).attr("alt", title).raw(">")
	}
	p.raw(`<div class="post-body mt-8 space-y-4">`)
	content.Render(&p.Buffer, blocks)
	p.raw("</div>")
}

// NotFound renders the 404 page.
func NotFound(cfg landscaping.SiteConfig) templ.Component {
	return errorPage(cfg, "Page not found", "The page you are looking for does not exist or is no longer published.")
}

// ServerError renders the 500 page.
func ServerError(cfg landscaping.SiteConfig) templ.Component {
	return errorPage(cfg, "Something went wrong", "Please try again in a moment.")
}

func errorPage(cfg landscaping.SiteConfig, heading, message string) templ.Component {
	return component(func(p *page) {
		writeHead(p, cfg, landscaping.PageMeta{Title: heading + " | " + cfg.Name}, "")
		p.raw(`<main class="mx-auto max-w-3xl px-4 py-24 text-center">`)
		p.raw(`<h1 class="text-3xl font-bold">`).text(heading).raw("</h1>")
		p.raw(`<p class="mt-4 text-stone-600">`).text(message).raw("</p>")
		p.raw(`<p class="mt-8"><a href="/blog/" class="text-green-800 hover:underline">Back to the blog</a></p>`)
		p.raw("</main>")
		writeFoot(p, cfg)
	})
}
