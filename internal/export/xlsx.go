// Package export renders CMS listings as spreadsheets.
package export

import (
	"io"
	"strings"

	"dutyfree/internal/domain"
	"github.com/tealeg/xlsx"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

// Orders writes one row per order line, order columns repeated on each line.
// Orders without lines still get a single row.
func Orders(w io.Writer, orders []domain.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	addRow(sheet,
		"Order ID", "Created", "Status", "Email", "Surname", "Other names", "Passport",
		"Flight", "Arrival date", "Arrival time", "Contact", "Subtotal", "Total",
		"Product", "Category", "Quantity", "Unit price",
	)
	for _, o := range orders {
		email := o.CustomerEmail
		if email == "" {
			email = o.GuestEmail
		}
		head := []interface{}{
			o.ID, o.CreatedAt.Format(timeLayout), string(o.Status), email, o.Surname, o.OtherNames,
			o.PassportNumber, o.ArrivalFlightNumber, o.ArrivalDate, o.ArrivalTime, o.ContactNumber,
			o.Subtotal.StringFixed(2), o.Total.StringFixed(2),
		}
		if len(o.Items) == 0 {
			addRow(sheet, append(head, "", "", "", "")...)
			continue
		}
		for _, it := range o.Items {
			addRow(sheet, append(head, it.ProductName, it.ProductCategory, it.Quantity, it.ProductPrice.StringFixed(2))...)
		}
	}
	return file.Write(w)
}

func Products(w io.Writer, products []domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	addRow(sheet, "ID", "Name", "Category", "Description", "In stock", "Visible", "Display order", "Image", "Updated")
	for _, p := range products {
		addRow(sheet,
			p.ID, p.Name, p.Category, strings.TrimSpace(p.Description), p.InStock, p.IsVisible,
			p.DisplayOrder, p.ImageURL, p.UpdatedAt.Format(timeLayout),
		)
	}
	return file.Write(w)
}
