package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Register mounts the month-grid endpoint backing the frontends' date picker.
func Register(rg *gin.RouterGroup) {
	rg.GET("/calendar/:year/:month", monthHandler)
}

func monthHandler(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	monthNum, err := strconv.Atoi(c.Param("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}

	grid := MonthGrid(year, time.Month(monthNum), time.Now())
	c.JSON(http.StatusOK, grid)
}
