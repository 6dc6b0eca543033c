package feed

// Field identifies the record attribute a header column feeds.
type Field string

const (
	FieldSKU              Field = "sku"
	FieldTitle            Field = "title"
	FieldShortDescription Field = "short_description"
	FieldLongDescription  Field = "long_description"
	FieldImages           Field = "images"
	FieldCategory         Field = "category"
	FieldColour           Field = "colour"
	FieldCategoryOne      Field = "category_one"
	FieldCategoryTwo      Field = "category_two"
	FieldPSIN             Field = "psin"

	FieldStockQuantity  Field = "stock_quantity"
	FieldStockStatus    Field = "stock_status"
	FieldPrice          Field = "price"
	FieldWholesalePrice Field = "wholesale_price"
)

// ColumnMap maps a trimmed header cell to a field. Lookups are case
// sensitive, so every accepted spelling is listed.
type ColumnMap map[string]Field

var ProductColumns = ColumnMap{
	"sku":         FieldSKU,
	"SKU":         FieldSKU,
	"product_sku": FieldSKU,

	"title":         FieldTitle,
	"Title":         FieldTitle,
	"product_title": FieldTitle,
	"name":          FieldTitle,

	"short_description": FieldShortDescription,
	"Short Description": FieldShortDescription,
	"shortDescription":  FieldShortDescription,

	"long_description": FieldLongDescription,
	"Long Description": FieldLongDescription,
	"longDescription":  FieldLongDescription,
	"description":      FieldLongDescription,
	"Description":      FieldLongDescription,

	"images":     FieldImages,
	"Images":     FieldImages,
	"image_urls": FieldImages,
	"image":      FieldImages,
	"Image":      FieldImages,
	"Base image": FieldImages,
	"base_image": FieldImages,

	"category": FieldCategory,
	"Category": FieldCategory,

	"colour": FieldColour,
	"Colour": FieldColour,
	"color":  FieldColour,
	"Color":  FieldColour,

	"category_one": FieldCategoryOne,
	"Category One": FieldCategoryOne,
	"categoryOne":  FieldCategoryOne,
	"category_1":   FieldCategoryOne,

	"category_two": FieldCategoryTwo,
	"Category Two": FieldCategoryTwo,
	"categoryTwo":  FieldCategoryTwo,
	"category_2":   FieldCategoryTwo,

	"psin": FieldPSIN,
	"Psin": FieldPSIN,
	"PSIN": FieldPSIN,
}

var StockColumns = ColumnMap{
	"sku":         FieldSKU,
	"SKU":         FieldSKU,
	"product_sku": FieldSKU,

	"stock":          FieldStockQuantity,
	"Stock":          FieldStockQuantity,
	"stock_quantity": FieldStockQuantity,
	"quantity":       FieldStockQuantity,
	"Quantity":       FieldStockQuantity,
	"qty":            FieldStockQuantity,

	"stock_status": FieldStockStatus,
	"status":       FieldStockStatus,

	"price":        FieldPrice,
	"Price":        FieldPrice,
	"retail_price": FieldPrice,
	"sell_price":   FieldPrice,

	"wholesale_price": FieldWholesalePrice,
	"Wholesale Price": FieldWholesalePrice,
	"WholeSale Price": FieldWholesalePrice,
	"wholesalePrice":  FieldWholesalePrice,
	"cost":            FieldWholesalePrice,
	"Cost":            FieldWholesalePrice,
}

type column struct {
	index int
	field Field
}

// resolve returns the mapped columns in header order. When two headers
// map to the same field the later one wins, as cells are applied in order.
func (m ColumnMap) resolve(header []string) []column {
	var cols []column
	for i, h := range header {
		if f, ok := m[trimCell(h)]; ok {
			cols = append(cols, column{index: i, field: f})
		}
	}
	return cols
}
