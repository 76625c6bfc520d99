package core

// Category is a static classification bucket. Icon and Color are symbolic
// names for the presentation layer.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Kind  Kind   `json:"type"`
}

// FallbackCategoryID identifies the synthetic category unknown ids resolve to.
const FallbackCategoryID = "other"

var expenseCategories = []Category{
	{ID: "food", Name: "Food", Icon: "utensils", Color: "orange", Kind: KindExpense},
	{ID: "transport", Name: "Transport", Icon: "bus", Color: "blue", Kind: KindExpense},
	{ID: "shopping", Name: "Shopping", Icon: "shopping-bag", Color: "pink", Kind: KindExpense},
	{ID: "entertainment", Name: "Entertainment", Icon: "gamepad", Color: "purple", Kind: KindExpense},
	{ID: "housing", Name: "Housing", Icon: "home", Color: "indigo", Kind: KindExpense},
	{ID: "medical", Name: "Medical", Icon: "stethoscope", Color: "red", Kind: KindExpense},
	{ID: "other_expense", Name: "Other", Icon: "more-horizontal", Color: "gray", Kind: KindExpense},
}

var incomeCategories = []Category{
	{ID: "salary", Name: "Salary", Icon: "wallet", Color: "emerald", Kind: KindIncome},
	{ID: "bonus", Name: "Bonus", Icon: "gift", Color: "yellow", Kind: KindIncome},
	{ID: "investment", Name: "Investment", Icon: "trending-up", Color: "cyan", Kind: KindIncome},
	{ID: "other_income", Name: "Other", Icon: "more-horizontal", Color: "gray", Kind: KindIncome},
}

var unknownCategory = Category{ID: FallbackCategoryID, Name: "Unknown", Icon: "help-circle", Color: "gray"}

// ForKind returns a copy of the ordered category set for kind.
func ForKind(kind Kind) []Category {
	var src []Category
	switch kind {
	case KindExpense:
		src = expenseCategories
	case KindIncome:
		src = incomeCategories
	default:
		return nil
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// Lookup finds a category by id within kind's partition.
func Lookup(kind Kind, id string) (Category, bool) {
	for _, c := range ForKind(kind) {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Valid reports whether id belongs to kind's category set.
func Valid(kind Kind, id string) bool {
	_, ok := Lookup(kind, id)
	return ok
}

// Default is the first category of kind, used to pre-select the manual form.
func Default(kind Kind) Category {
	cats := ForKind(kind)
	if len(cats) == 0 {
		return unknownCategory
	}
	return cats[0]
}

// Fallback is the catch-all category of kind (other_expense / other_income).
func Fallback(kind Kind) Category {
	cats := ForKind(kind)
	if len(cats) == 0 {
		return unknownCategory
	}
	return cats[len(cats)-1]
}

// Resolve never fails: ids outside kind's set map to a neutral "Unknown"
// category carrying the requested kind.
func Resolve(kind Kind, id string) Category {
	if c, ok := Lookup(kind, id); ok {
		return c
	}
	c := unknownCategory
	c.Kind = kind
	return c
}
