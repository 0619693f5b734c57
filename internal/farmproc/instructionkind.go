package farmproc

// The two static instruction-kind sets from spec.md §6, authoritative.

// NeedsFW is the set of instruction kinds that require exclusive
// firmware access.
var NeedsFW = map[Kind]struct{}{
	"config_update":   {},
	"_if":             {},
	"write_pin":       {},
	"read_pin":        {},
	"move_absolute":   {},
	"set_servo_angle": {},
	"move_relative":   {},
	"home":            {},
	"find_home":       {},
	"toggle_pin":      {},
	"zero":            {},
	"calibrate":       {},
	"sequence":        {},
	"rpc_request":     {},
}

// AllowedWhenLocked is the set of instruction kinds permitted to run
// while the system is in emergency-lock.
var AllowedWhenLocked = map[Kind]struct{}{
	"check_updates":                {},
	"config_update":                {},
	"uninstall_farmware":           {},
	"update_farmware":              {},
	"rpc_request":                  {},
	"rpc_ok":                       {},
	"rpc_error":                    {},
	"install":                      {},
	"read_status":                  {},
	"sync":                         {},
	"power_off":                    {},
	"reboot":                       {},
	"factory_reset":                {},
	"set_user_env":                 {},
	"install_first_party_farmware": {},
	"change_ownership":             {},
	"dump_info":                    {},
	"_if":                          {},
	"send_message":                 {},
	"sequence":                     {},
	"wait":                         {},
	"execute":                      {},
	"execute_script":               {},
	"emergency_lock":               {},
	"emergency_unlock":             {},
}

// IsNeedsFW reports whether kind requires exclusive firmware access.
func (k Kind) IsNeedsFW() bool {
	_, ok := NeedsFW[k]
	return ok
}

// IsAllowedWhenLocked reports whether kind may execute under emergency-lock.
func (k Kind) IsAllowedWhenLocked() bool {
	_, ok := AllowedWhenLocked[k]
	return ok
}
