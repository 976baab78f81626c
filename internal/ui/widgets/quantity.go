package widgets

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
)

// CPU formats millicores the way kubectl does: 500m, 2, 2500m.
func CPU(mcpu int64) string {
	return resource.NewMilliQuantity(mcpu, resource.DecimalSI).String()
}

// Mem formats MiB as a binary quantity: 512Mi, 4Gi.
func Mem(mib int64) string {
	return resource.NewQuantity(mib*1024*1024, resource.BinarySI).String()
}

func Cost(units float64) string {
	return fmt.Sprintf("%.2f", units)
}

// Pct renders part/whole as a whole percentage, or n/a when whole is zero.
func Pct(part, whole float64) string {
	if whole <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", part/whole*100)
}
