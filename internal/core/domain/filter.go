package domain

// AllCategories is the category filter sentinel that matches every item.
const AllCategories = "all"

type Filter struct {
	Search     string
	CategoryID string
}

func DefaultFilter() Filter {
	return Filter{CategoryID: AllCategories}
}

type GuardResult struct {
	Allowed bool
	Reason  string
}
