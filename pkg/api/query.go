package api

import (
	"net/http"
	"strconv"

	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

// parseQuery reads filter, page, limit and evm from the query string.
// page and limit are honoured only when both are present.
func parseQuery(r *http.Request, category tokenlist.Category, reviewer string) (tokenlist.Query, *tokenlist.Error) {
	values := r.URL.Query()
	q := tokenlist.Query{
		Category: category,
		Reviewer: reviewer,
		EVMOnly:  values.Get("evm") == "true",
	}

	if raw := values.Get("filter"); raw != "" {
		filter, err := strconv.Atoi(raw)
		if err != nil {
			return q, badRequest("The filter type is invalid")
		}
		q.Filter = tokenlist.FilterType(filter)
	}

	rawPage, rawLimit := values.Get("page"), values.Get("limit")
	if rawPage != "" && rawLimit != "" {
		page, err := strconv.Atoi(rawPage)
		if err != nil {
			return q, badRequest("The page is invalid")
		}
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			return q, badRequest("The limit is invalid")
		}
		q.Page, q.Limit = &page, &limit
	}

	return q, nil
}

func badRequest(msg string) *tokenlist.Error {
	return &tokenlist.Error{Status: http.StatusBadRequest, Message: msg, Kind: tokenlist.ErrInvalidInput}
}
