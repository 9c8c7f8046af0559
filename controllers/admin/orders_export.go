package adminControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/models"
)

// GET /admin/orders/export-excel
// Downloads the order book for the back office.
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("User").Preload("Payment").Preload("Zone").Order("created_at DESC").Find(&orders).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch orders", nil)
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to create Excel sheet", nil)
			return
		}

		headers := []string{
			"OrderNumber", "User", "Email", "Zone", "Status",
			"Total", "PaymentMethod", "PaymentStatus", "Paid", "Remaining", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.OrderNumber)
			row.AddCell().SetValue(o.User.Name)
			row.AddCell().SetValue(o.User.Email)
			row.AddCell().SetValue(o.Zone.Name)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
			if o.Payment != nil {
				row.AddCell().SetValue(string(o.Payment.Method))
				row.AddCell().SetValue(string(o.Payment.Status))
				row.AddCell().SetValue(o.Payment.PaidAmount.StringFixed(2))
				row.AddCell().SetValue(o.Payment.RemainingAmount.StringFixed(2))
			} else {
				for i := 0; i < 4; i++ {
					row.AddCell().SetValue("")
				}
			}
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		if err := file.Write(c.Writer); err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to write Excel file", nil)
			return
		}
	}
}
