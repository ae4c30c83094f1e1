package types

// Filter - параметры списка: поиск, фильтры по белому списку полей, сортировка и пагинация.
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// http://localhost:8080/api/orders?search=Иванов&sort[created_at]=desc&filter[status]=assigned,in_progress&limit=10&page=1&withPagination=true
