package utils

import "net/url"

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
// Frame src attributes in the portal are frequently relative to the
// application root.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}
