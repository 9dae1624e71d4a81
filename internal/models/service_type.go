package models

// Serviço oferecido por um salão (embutido no documento do salão).
type ServiceType struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	DurationMin int     `bson:"duration_min" json:"duration_min"`
	Price       float64 `bson:"price" json:"price"`
	Active      bool    `bson:"active" json:"active"`
}
