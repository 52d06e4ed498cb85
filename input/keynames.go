package input

import "strconv"

// Linux input-event-codes for the keys we name. Anything else becomes
// key<code>.
var keyNames = map[uint16]string{
	1:   "esc",
	2:   "1",
	3:   "2",
	4:   "3",
	5:   "4",
	6:   "5",
	7:   "6",
	8:   "7",
	9:   "8",
	10:  "9",
	11:  "0",
	12:  "-",
	13:  "=",
	14:  "backspace",
	15:  "tab",
	16:  "q",
	17:  "w",
	18:  "e",
	19:  "r",
	20:  "t",
	21:  "y",
	22:  "u",
	23:  "i",
	24:  "o",
	25:  "p",
	26:  "[",
	27:  "]",
	28:  "enter",
	29:  "ctrl",
	30:  "a",
	31:  "s",
	32:  "d",
	33:  "f",
	34:  "g",
	35:  "h",
	36:  "j",
	37:  "k",
	38:  "l",
	39:  ";",
	40:  "'",
	41:  "`",
	42:  "shift",
	43:  "\\",
	44:  "z",
	45:  "x",
	46:  "c",
	47:  "v",
	48:  "b",
	49:  "n",
	50:  "m",
	51:  ",",
	52:  ".",
	53:  "/",
	54:  "shift_r",
	56:  "alt",
	57:  "space",
	58:  "caps_lock",
	59:  "f1",
	60:  "f2",
	61:  "f3",
	62:  "f4",
	63:  "f5",
	64:  "f6",
	65:  "f7",
	66:  "f8",
	67:  "f9",
	68:  "f10",
	69:  "num_lock",
	70:  "scroll_lock",
	87:  "f11",
	88:  "f12",
	96:  "enter",
	97:  "ctrl_r",
	99:  "print_screen",
	100: "alt_r",
	102: "home",
	103: "up",
	104: "page_up",
	105: "left",
	106: "right",
	107: "end",
	108: "down",
	109: "page_down",
	110: "insert",
	111: "delete",
	119: "pause",
	125: "cmd",
	126: "cmd_r",
	127: "menu",
}

// KeyName returns the wire id for a key code
func KeyName(code uint16) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return "key" + strconv.Itoa(int(code))
}
