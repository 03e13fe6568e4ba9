package model

import (
	"net/url"
	"time"
)

// Category は車両カテゴリを表す。
type Category string

// 定義済み車両カテゴリ
const (
	CategorySUV        Category = "SUV"
	CategoryElectric   Category = "Electric"
	CategoryVan        Category = "Van"
	CategorySedan      Category = "Sedan"
	CategoryTruck      Category = "Truck"
	CategoryMotorcycle Category = "Motorcycle"
)

// Categories は選択可能な全カテゴリの一覧。
var Categories = []Category{
	CategorySUV,
	CategoryElectric,
	CategoryVan,
	CategorySedan,
	CategoryTruck,
	CategoryMotorcycle,
}

// IsValidCategory はカテゴリが定義済みの値かを判定する。
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if string(v) == c {
			return true
		}
	}
	return false
}

// Vehicle は車両リスティングを表す。
// JSONタグはレンタルAPIのワイヤフォーマットに合わせる（IDは"_id"）。
// OwnerEmailは登録後に変更されず、クライアント側の編集・削除ガードの判定に使う。
type Vehicle struct {
	ID           string    `json:"_id,omitempty"`
	VehicleName  string    `json:"vehicleName"`
	OwnerName    string    `json:"ownerName"`
	OwnerEmail   string    `json:"userEmail"`
	Category     Category  `json:"category"`
	PricePerDay  float64   `json:"pricePerDay"`
	Location     string    `json:"location"`
	Availability bool      `json:"availability"`
	Description  string    `json:"description"`
	CoverImage   string    `json:"coverImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// ソートフィールド・ソート順の定義済み値
const (
	SortByPrice = "price"
	SortByDate  = "date"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// VehicleQuery は車両一覧取得のフィルタ・ソートパラメータを表す。
// ゼロ値は「フィルタなし・ソートなし」を意味する。
type VehicleQuery struct {
	Category  string
	Location  string
	SortBy    string // "price" | "date" | ""
	SortOrder string // "asc" | "desc" | ""
}

// Validate はクエリパラメータの値を検証する。
func (q VehicleQuery) Validate() error {
	if q.Category != "" && !IsValidCategory(q.Category) {
		return NewInvalidCategoryError(q.Category)
	}
	if q.SortBy != "" && q.SortBy != SortByPrice && q.SortBy != SortByDate {
		return NewInvalidSortError(q.SortBy)
	}
	if q.SortOrder != "" && q.SortOrder != SortOrderAsc && q.SortOrder != SortOrderDesc {
		return NewInvalidSortError(q.SortOrder)
	}
	return nil
}

// Params はレンタルAPIに送信するクエリパラメータを生成する。
// url.Values.Encode()はキーをソートするため、同一条件のクエリは
// 常に同一の文字列になる。この性質をキャッシュキーの生成にも利用する。
func (q VehicleQuery) Params() url.Values {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
		order := q.SortOrder
		if order == "" {
			order = SortOrderAsc
		}
		params.Set("sortOrder", order)
	}
	return params
}
