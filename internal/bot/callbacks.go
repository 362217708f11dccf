package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/game_store/internal/domain"
)

const (
	CbMainMenu         = "main_menu"
	CbCatalog          = "catalog"
	CbPlatform         = "platform"
	CbProduct          = "product"
	CbAddToCart        = "add_to_cart"
	CbRemoveFromCart   = "remove_from_cart"
	CbViewCart         = "view_cart"
	CbClearCart        = "clear_cart"
	CbConfirmCheckout  = "confirm_checkout"
	CbFinalizeCheckout = "finalize_checkout"
	CbMyOrders         = "my_orders"
	CbCancelOrder      = "cancel_order"
	CbCancelOp         = "cancel_op"
)

// Callback is a parsed inline button payload of the form action[:arg].
type Callback struct {
	Action string
	Arg    string
	ID     uint
}

var withID = map[string]bool{
	CbProduct:        true,
	CbAddToCart:      true,
	CbRemoveFromCart: true,
	CbCancelOrder:    true,
}

var bare = map[string]bool{
	CbMainMenu:         true,
	CbCatalog:          true,
	CbViewCart:         true,
	CbClearCart:        true,
	CbConfirmCheckout:  true,
	CbFinalizeCheckout: true,
	CbMyOrders:         true,
	CbCancelOp:         true,
}

func ParseCallback(data string) (Callback, error) {
	action, arg, hasArg := strings.Cut(data, ":")
	switch {
	case bare[action] && !hasArg:
		return Callback{Action: action}, nil
	case action == CbPlatform && arg != "":
		return Callback{Action: action, Arg: arg}, nil
	case withID[action]:
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || id == 0 {
			return Callback{}, fmt.Errorf("%w: bad id in callback %q", domain.ErrValidation, data)
		}
		return Callback{Action: action, Arg: arg, ID: uint(id)}, nil
	}
	return Callback{}, fmt.Errorf("%w: unknown callback %q", domain.ErrValidation, data)
}

func cbData(action string, id uint) string {
	return action + ":" + strconv.FormatUint(uint64(id), 10)
}

func cbPlatform(name string) string {
	return CbPlatform + ":" + name
}
