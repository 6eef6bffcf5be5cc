package headhunter

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

const (
	SearchPath  = "/search/vacancy"
	currencyRUR = "RUR"
)

type SearchParams struct {
	// hhparam is a custom tag with the query parameter name. Please see below.
	Text         string `hhparam:"text"`
	Area         string `hhparam:"area"`
	Salary       int    `hhparam:"salary"`
	CurrencyCode string `hhparam:"currency_code"`
	// Only the first page is ever requested.
	Page int `hhparam:"page" keepzero:"true"`
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		v := value.FieldByIndex(field.Index)
		switch v.Kind() {
		case reflect.Int:
			if v.Int() == 0 && field.Tag.Get("keepzero") == "" {
				continue
			}
			q.Set(key, strconv.FormatInt(v.Int(), 10))
		default:
			s := fmt.Sprintf("%v", v.Interface())
			if s == "" {
				continue
			}
			q.Set(key, s)
		}
	}

	return q
}
