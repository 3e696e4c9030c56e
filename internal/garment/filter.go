package garment

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"wardrobe-be/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// sortColumns whitelists the fields accepted by sortBy=field:asc|desc.
var sortColumns = map[string]string{
	"name":      "g.name",
	"price":     "g.price",
	"createdAt": "g.created_at",
	"updatedAt": "g.updated_at",
	"category":  "g.category",
	"size":      "g.size",
}

// ParseListFilter reads the GET /garment query string. Every malformed value
// is reported together in one ErrInvalidInput.
func ParseListFilter(q url.Values) (ListFilter, error) {
	f := ListFilter{Limit: DefaultLimit}
	var problems []string

	enumSet := func(key string, allowed []string) []string {
		values := utils.SplitCSV(q.Get(key))
		for _, v := range values {
			if !slices.Contains(allowed, v) {
				problems = append(problems, fmt.Sprintf("%s: unknown value %q", key, v))
			}
		}
		return values
	}

	price := func(key string) *decimal.Decimal {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			problems = append(problems, key+" must be a number")
			return nil
		}
		return &d
	}

	intParam := func(key string, fallback, floor int) int {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < floor {
			problems = append(problems, fmt.Sprintf("%s must be an integer >= %d", key, floor))
			return fallback
		}
		return n
	}

	f.Search = strings.TrimSpace(q.Get("search"))
	f.Categories = enumSet("categories", Categories)
	f.Genders = enumSet("genders", Genders)
	f.Colors = enumSet("colors", Colors)
	f.Types = enumSet("types", Types)
	f.States = enumSet("states", Conditions)
	f.MinPrice = price("minPrice")
	f.MaxPrice = price("maxPrice")

	if raw := strings.TrimSpace(q.Get("me")); raw != "" {
		mine, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, "me must be true or false")
		}
		f.Mine = mine
	}

	if raw := strings.TrimSpace(q.Get("garmentBase")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			problems = append(problems, "garmentBase must be a garment id")
		} else {
			f.GarmentBase = &id
		}
	}

	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		field, dir, _ := strings.Cut(raw, ":")
		if _, ok := sortColumns[field]; !ok {
			problems = append(problems, fmt.Sprintf("sortBy: unknown field %q", field))
		}
		switch dir {
		case "", "asc":
		case "desc":
			f.SortDesc = true
		default:
			problems = append(problems, "sortBy direction must be asc or desc")
		}
		f.SortField = field
	}

	f.Limit = min(intParam("limit", DefaultLimit, 1), MaxLimit)
	f.Skip = intParam("skip", 0, 0)

	if len(problems) > 0 {
		return ListFilter{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return f, nil
}

// buildListQuery composes the filter into one parameterized SELECT. All
// predicates are ANDed; ordering always ends with created_at DESC, id ASC so
// pagination is stable.
func buildListQuery(callerID uuid.UUID, f ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Mine {
		where = append(where, "g.owner_id = "+arg(callerID))
	} else {
		where = append(where, "g.owner_id <> "+arg(callerID))
	}

	if f.Search != "" {
		p := arg("%" + utils.EscapeLike(f.Search) + "%")
		where = append(where, fmt.Sprintf("(g.name ILIKE %s OR g.description ILIKE %s)", p, p))
	}
	if len(f.Categories) > 0 {
		where = append(where, "g.category = ANY("+arg(pq.Array(f.Categories))+")")
	}
	if len(f.Genders) > 0 {
		where = append(where, "g.gender = ANY("+arg(pq.Array(f.Genders))+")")
	}
	if len(f.Colors) > 0 {
		where = append(where, "g.colors && "+arg(pq.Array(f.Colors)))
	}
	if len(f.Types) > 0 {
		where = append(where, "g.type = ANY("+arg(pq.Array(f.Types))+")")
	}
	if len(f.States) > 0 {
		where = append(where, "g.status = ANY("+arg(pq.Array(f.States))+")")
	}
	if f.MinPrice != nil {
		where = append(where, "g.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "g.price <= "+arg(*f.MaxPrice))
	}
	if f.GarmentBase != nil {
		where = append(where, "g.garment_base = "+arg(*f.GarmentBase))
	}

	var sb strings.Builder
	sb.WriteString(SelectWithOwner)
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(where, " AND "))

	sb.WriteString(" ORDER BY ")
	if col, ok := sortColumns[f.SortField]; ok {
		dir := "ASC"
		if f.SortDesc {
			dir = "DESC"
		}
		sb.WriteString(col + " " + dir + ", ")
	}
	sb.WriteString("g.created_at DESC, g.id ASC")

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	sb.WriteString(" LIMIT " + arg(limit))
	sb.WriteString(" OFFSET " + arg(f.Skip))

	return sb.String(), args
}
