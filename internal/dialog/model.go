package dialog

type State string

const (
	StateIdle             State = "idle"
	StateAwaitAddress     State = "await_address"      // /link without an argument
	StateAwaitSeatAddress State = "await_seat_address" // /adduser without an argument
	StateAwaitTransferTo  State = "await_transfer_to"  // recipient for a transfer picked from /me
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
