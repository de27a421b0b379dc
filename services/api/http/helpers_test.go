package http

import (
	"strconv"
	"strings"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func lower(s string) string { return strings.ToLower(s) }
