package email

// Categories the model is asked to choose from.
const (
	CategoryImportant  = "Important"
	CategoryPromotions = "Promotions"
	CategorySocial     = "Social"
	CategoryMarketing  = "Marketing"
	CategorySpam       = "Spam"
	CategoryGeneral    = "General"
)

// DefaultCategory is assigned when the model gives no usable category.
const DefaultCategory = CategoryGeneral

// Categories lists the label set in the order it is presented to the model.
var Categories = []string{
	CategoryImportant,
	CategoryPromotions,
	CategorySocial,
	CategoryMarketing,
	CategorySpam,
	CategoryGeneral,
}

// IsKnownCategory reports whether c is one of Categories (exact match).
// Classification does not enforce this; it is used for observability only.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
