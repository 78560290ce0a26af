package types

// Finance is a ledger row. EquipmentName is free text and is not
// tied to an Equipment record.
type Finance struct {
	ID            int     `json:"id" db:"id"`
	Date          Date    `json:"date" db:"date"`
	EquipmentName string  `json:"equipment_name" db:"equipment_name"`
	Energy        float64 `json:"energy" db:"energy"`
	Effectiveness float64 `json:"effectiveness" db:"effectiveness"`
	BcdTotal      float64 `json:"bcd_total" db:"bcd_total"`
	Income        int     `json:"income" db:"income"`
	Expense       int     `json:"expense" db:"expense"`
	Benefit       int     `json:"benefit" db:"benefit"`
}
