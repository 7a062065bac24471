package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/store"
)

const maxLimit = 100

// ParsePageRequest extracts the limit and page query parameters. Both must be
// given together; omitting both requests the full list.
func ParsePageRequest(c *gin.Context) (store.PageRequest, error) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return store.PageRequest{}, err
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return store.PageRequest{}, err
	}

	if (limit == 0) != (page == 0) {
		return store.PageRequest{}, domain.NewAppError(domain.CodeValidation,
			"Both limit and page must be provided", store.ErrPartialPagination)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return store.PageRequest{Limit: limit, Page: page}, nil
}

// queryInt parses a positive integer query parameter. A missing or empty
// parameter yields 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewAppError(domain.CodeValidation, key+" must be a positive integer", err)
	}
	return n, nil
}

// QueryString returns a pointer to the query parameter, or nil when it is
// absent or empty so the store prunes it from filters.
func QueryString(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, key+" must be a boolean", err)
	}
	return &b, nil
}

// QueryFloat parses an optional numeric query parameter.
func QueryFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, key+" must be a number", err)
	}
	return &f, nil
}

// ParamUint parses a positive integer path parameter.
func ParamUint(c *gin.Context, key string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, domain.NewAppError(domain.CodeValidation, "invalid "+key, err)
	}
	return uint(n), nil
}

// ParamUUID parses a UUID path parameter and returns it in canonical form.
func ParamUUID(c *gin.Context, key string) (string, error) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		return "", domain.NewAppError(domain.CodeValidation, "invalid "+key, err)
	}
	return id.String(), nil
}
