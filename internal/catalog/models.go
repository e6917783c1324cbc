package catalog

// Product is a catalog entry.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	StockQuantity int      `json:"stockQuantity"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Images        []string `json:"images,omitempty"`
	CategoryID    int64    `json:"categoryId,omitempty"`
	CategoryName  string   `json:"categoryName,omitempty"`
	Status        string   `json:"status,omitempty"`
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
	SoldCount     int      `json:"soldCount"`
}

// ProductInput creates or updates a product.
type ProductInput struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price" validate:"gt=0"`
	DiscountPrice *float64 `json:"discountPrice,omitempty" validate:"omitempty,gte=0"`
	StockQuantity int      `json:"stockQuantity" validate:"gte=0"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Images        []string `json:"images,omitempty"`
	CategoryID    int64    `json:"categoryId" validate:"gt=0"`
	Status        string   `json:"status,omitempty"`
}

// Category is a product category, possibly with children.
type Category struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Image        string     `json:"image,omitempty"`
	ParentID     *int64     `json:"parentId,omitempty"`
	ParentName   string     `json:"parentName,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
	Children     []Category `json:"children,omitempty"`
	ProductCount int        `json:"productCount"`
}

// CategoryInput creates or updates a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	ParentID    *int64 `json:"parentId,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// CategoryFilter narrows the category list.
type CategoryFilter struct {
	Keyword  string
	IsActive *bool
	ParentID *int64
	RootOnly bool
}
