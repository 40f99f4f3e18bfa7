package videometa

import (
	"fmt"
	"net/http"

	"golang.org/x/net/html"
)

func getFromPage(videoId string) (*VideoData, error) {
	resp, err := http.Get("https://youtu.be/" + videoId)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	return &VideoData{
		Title:        getTitle(doc),
		AuthorName:   getAuthorName(doc),
		ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId),
	}, nil
}

func getTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := getTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func getAuthorName(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		isName := false
		content := ""
		for _, attr := range n.Attr {
			if attr.Key == "itemprop" && attr.Val == "name" {
				isName = true
			}
			if attr.Key == "content" {
				content = attr.Val
			}
		}
		if isName {
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if name := getAuthorName(c); name != "" {
			return name
		}
	}
	return ""
}
