package handlers

import v "productos/internal/validation"

// Validation messages returned to clients.
const (
	MsgInvalidID           = "Id no válido"
	MsgNameRequired        = "El nombre del producto no puede ir vacio"
	MsgPriceRequired       = "El precio del producto no puede ir vacio"
	MsgInvalidValue        = "Valor no válido"
	MsgInvalidPrice        = "Precio no válido"
	MsgInvalidAvailability = "Valor no disponible"
)

var (
	idRules = v.Schema{
		v.Param("id", v.Integer(MsgInvalidID)),
	}

	productBodyRules = v.Schema{
		v.BodyField("name", v.NotEmpty(MsgNameRequired)),
		v.BodyField("price",
			v.NotEmpty(MsgPriceRequired),
			v.Numeric(MsgInvalidValue),
			v.Positive(MsgInvalidPrice),
		),
	}

	createProductRules = productBodyRules

	updateProductRules = concat(idRules, productBodyRules, v.Schema{
		v.BodyField("availability", v.Boolean(MsgInvalidAvailability)),
	})
)

func concat(schemas ...v.Schema) v.Schema {
	var out v.Schema
	for _, s := range schemas {
		out = append(out, s...)
	}
	return out
}
