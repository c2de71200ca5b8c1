package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tally/internal/ledger/models"
	id "tally/pkg/domain"
	dErrors "tally/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

type createPurchaseRequest struct {
	EmployeeID string        `json:"employeeId"`
	UserID     *string       `json:"userId,omitempty"`
	Date       string        `json:"date"`
	Items      []itemRequest `json:"items"`
}

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type addItemsRequest struct {
	Items []itemRequest `json:"items"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (r createPurchaseRequest) toDomain() (models.PurchaseAttrs, []models.ItemInput, error) {
	employeeID, err := id.ParseEmployeeID(r.EmployeeID)
	if err != nil {
		return models.PurchaseAttrs{}, nil, dErrors.New(dErrors.CodeValidation, "employeeId must be a valid UUID")
	}

	var userID *id.UserID
	if r.UserID != nil {
		parsed, err := id.ParseUserID(*r.UserID)
		if err != nil {
			return models.PurchaseAttrs{}, nil, dErrors.New(dErrors.CodeValidation, "userId must be a valid UUID")
		}
		userID = &parsed
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return models.PurchaseAttrs{}, nil, err
	}

	items, err := toItemInputs(r.Items)
	if err != nil {
		return models.PurchaseAttrs{}, nil, err
	}

	return models.PurchaseAttrs{EmployeeID: employeeID, UserID: userID, Date: date}, items, nil
}

func (r addItemsRequest) toDomain() ([]models.ItemInput, error) {
	return toItemInputs(r.Items)
}

func toItemInputs(items []itemRequest) ([]models.ItemInput, error) {
	inputs := make([]models.ItemInput, 0, len(items))
	for idx, item := range items {
		productID, err := id.ParseProductID(item.ProductID)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeValidation, "items[%d]: productId must be a valid UUID", idx)
		}
		inputs = append(inputs, models.ItemInput{ProductID: productID, Quantity: item.Quantity})
	}
	return inputs, nil
}

// parseDate accepts calendar dates and full RFC 3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	if date, err := time.Parse(dateLayout, raw); err == nil {
		return date, nil
	}
	if date, err := time.Parse(time.RFC3339, raw); err == nil {
		return date, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD or RFC 3339")
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// parseListQuery reads the listing filter and pagination from query params.
// Unknown params are ignored; malformed values are rejected.
func parseListQuery(r *http.Request) (models.ListFilter, models.Pagination, error) {
	q := r.URL.Query()

	var filter models.ListFilter
	if raw := q.Get("employeeId"); raw != "" {
		employeeID, err := id.ParseEmployeeID(raw)
		if err != nil {
			return filter, models.Pagination{}, dErrors.New(dErrors.CodeValidation, "employeeId must be a valid UUID")
		}
		filter.EmployeeID = &employeeID
	}
	if raw := q.Get("closed"); raw != "" {
		closed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, models.Pagination{}, dErrors.New(dErrors.CodeValidation, "closed must be true or false")
		}
		filter.Closed = &closed
	}
	if raw := q.Get("dateFrom"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return filter, models.Pagination{}, dErrors.New(dErrors.CodeValidation, "dateFrom must be YYYY-MM-DD or RFC 3339")
		}
		filter.DateFrom = &from
	}
	if raw := q.Get("dateTo"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return filter, models.Pagination{}, dErrors.New(dErrors.CodeValidation, "dateTo must be YYYY-MM-DD or RFC 3339")
		}
		filter.DateTo = &to
	}

	var page models.Pagination
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, page, dErrors.New(dErrors.CodeValidation, "page must be an integer")
		}
		page.Page = n
	}
	if raw := q.Get("perPage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, page, dErrors.New(dErrors.CodeValidation, "perPage must be an integer")
		}
		page.PerPage = n
	}

	return filter, page.Normalize(), nil
}
