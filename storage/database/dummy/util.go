package dummydb

import "github.com/volatiletech/null/v8"

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}
