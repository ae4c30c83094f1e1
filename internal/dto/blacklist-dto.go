package dto

type BlacklistClientDTO struct {
	ClientName string `json:"client_name" validate:"required,min=2,max=255"`
	Phone      string `json:"phone" validate:"required,ru_phone"`
	Reason     string `json:"reason" validate:"required,min=3,max=1000"`
}

type BlacklistEntryResponseDTO struct {
	ID            uint64   `json:"id"`
	ClientName    string   `json:"client_name"`
	Phone         string   `json:"phone"`
	Reason        string   `json:"reason"`
	RelatedOrders []string `json:"related_orders"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}
