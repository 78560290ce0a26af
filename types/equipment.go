package types

// Equipment is a point-in-time monitoring snapshot of a mining rig.
type Equipment struct {
	ID            int    `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Date          Date   `json:"date" db:"date"`
	Asic          int    `json:"asic" db:"asic"`
	Fan           int    `json:"fan" db:"fan"`
	Core          int    `json:"core" db:"core"`
	Memory        int    `json:"memory" db:"memory"`
	Disk          int    `json:"disk" db:"disk"`
	EnergyVt      int    `json:"energy_vt" db:"energy_vt"`
	EnergyKvt     int    `json:"energy_kvt" db:"energy_kvt"`
	Hashrate      int    `json:"hashrate" db:"hashrate"`
	Effectiveness int    `json:"effectiveness" db:"effectiveness"`
	Uptime        int    `json:"uptime" db:"uptime"`
	HWError       int    `json:"hw_error" db:"hw_error"`
	Active        int    `json:"active" db:"active"`
}
