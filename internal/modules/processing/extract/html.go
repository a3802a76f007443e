package extract

import (
	"bytes"
	"fmt"
	neturl "net/url"
	"strings"

	"golang.org/x/net/html"
)

// extractHTML pulls the title, meta description, favicon link and paragraph
// text out of an HTML document.
func extractHTML(body []byte, baseURL string) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	result := &Result{}
	var text strings.Builder
	var walk func(n *html.Node, skip bool)
	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "nav", "footer":
				skip = true
			case "title":
				if result.Title == "" {
					result.Title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				name := strings.ToLower(attr(n, "name"))
				property := strings.ToLower(attr(n, "property"))
				if (name == "description" || property == "og:description") && result.Description == "" {
					result.Description = strings.TrimSpace(attr(n, "content"))
				}
				if property == "og:title" && result.Title == "" {
					result.Title = strings.TrimSpace(attr(n, "content"))
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				if strings.Contains(rel, "icon") && result.Favicon == "" {
					result.Favicon = resolveRef(baseURL, attr(n, "href"))
				}
			case "p", "li", "h1", "h2", "h3", "blockquote", "pre":
				if !skip {
					t := strings.TrimSpace(textContent(n))
					if t != "" {
						text.WriteString(t)
						text.WriteString("\n\n")
					}
					// children already consumed via textContent
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	result.Text = strings.TrimSpace(text.String())
	if result.Text == "" && result.Description != "" {
		result.Text = result.Description
	}
	return result, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolveRef(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := neturl.Parse(href)
	if err != nil {
		return ""
	}
	base, err := neturl.Parse(baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
