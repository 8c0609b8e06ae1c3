// Package validate turns raw product JSON into normalized domain products,
// reporting structural problems as field-level errors instead of failures.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shelfstream/prodex/internal/domain"
)

// FieldError is one validation problem, addressed by JSON field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the structured validation outcome for one item.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

type reviewInput struct {
	User    string `json:"user" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment"`
}

type locationInput struct {
	Aisle   string `json:"aisle"`
	Section string `json:"section"`
	Shelf   string `json:"shelf"`
}

type productInput struct {
	SKU         string         `json:"sku" validate:"required"`
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Brand       string         `json:"brand"`
	Images      []string       `json:"images" validate:"omitempty,dive,imageref"`
	Price       float64        `json:"price" validate:"required,gt=0"`
	Currency    string         `json:"currency" validate:"required"`
	InStock     *bool          `json:"inStock"`
	Reviews     []reviewInput  `json:"reviews" validate:"omitempty,dive"`
	Location    *locationInput `json:"location"`
}

// Validator validates raw product records. Pure: no side effects, no tenant
// injection.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the image reference rule registered.
func New() *Validator {
	v := validator.New()

	// Report JSON field names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
		return domain.IsImageRef(fl.Field().String())
	})

	return &Validator{v: v}
}

// Product validates one raw JSON value. On success the returned product has
// every client-supplied field normalized; TenantID, Embedding and the
// timestamps are left unset for the caller. On failure the Errors list has
// one entry per offending field. Malformed JSON is a validation outcome,
// never a panic or a request abort.
func (val *Validator) Product(raw json.RawMessage) (domain.Product, Errors) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	var in productInput
	if err := dec.Decode(&in); err != nil {
		return domain.Product{}, decodeErrors(err)
	}

	if err := val.v.Struct(&in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.Product{}, translate(verrs)
		}
		return domain.Product{}, Errors{{Message: err.Error()}}
	}

	return toProduct(&in), nil
}

func decodeErrors(err error) Errors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Errors{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		}}
	}
	return Errors{{Message: "item is not a valid product object"}}
}

func translate(verrs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath strips the root struct name from the namespace:
// "productInput.reviews[0].rating" -> "reviews[0].rating".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		switch fe.Field() {
		case "sku":
			return "SKU is required"
		case "name":
			return "Product name is required"
		case "price":
			return "Price is required"
		case "currency":
			return "Currency is required"
		case "user":
			return "Review user is required"
		}
		return fe.Field() + " is required"
	case "gt":
		return "Price must be a positive number"
	case "min":
		return "Rating must be at least 1"
	case "max":
		return "Rating can be at most 5"
	case "imageref":
		return "Must be a valid URL or base64 image string"
	default:
		return "is invalid"
	}
}

func toProduct(in *productInput) domain.Product {
	p := domain.Product{
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Brand:       in.Brand,
		Images:      in.Images,
		Price:       in.Price,
		Currency:    in.Currency,
		InStock:     in.InStock,
	}
	if len(in.Reviews) > 0 {
		p.Reviews = make([]domain.Review, len(in.Reviews))
		for i, r := range in.Reviews {
			p.Reviews[i] = domain.Review{User: r.User, Rating: r.Rating, Comment: r.Comment}
		}
	}
	if in.Location != nil {
		p.Location = &domain.Location{
			Aisle:   in.Location.Aisle,
			Section: in.Location.Section,
			Shelf:   in.Location.Shelf,
		}
	}
	return p
}
