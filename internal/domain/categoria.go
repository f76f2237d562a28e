package domain

type Categoria struct {
	ID        CategoriaID `json:"id"`
	Nombre    string      `json:"nombre"`
	Estado    string      `json:"estado"`
	CreatedAt Fecha       `json:"createdAt"`
	DeletedAt *Fecha      `json:"deletedAt"`
}

type CategoriaSimple struct {
	ID     CategoriaID `json:"id"`
	Nombre string      `json:"nombre"`
}

type Laboratorio struct {
	ID     LaboratorioID `json:"id"`
	Nombre string        `json:"nombre"`
	Estado string        `json:"estado,omitempty"`
}

type LaboratorioSimple struct {
	ID     LaboratorioID `json:"id"`
	Nombre string        `json:"nombre"`
}
