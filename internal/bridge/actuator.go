package bridge

import "github.com/jwebster45206/arena-engine/pkg/screen"

// Action is a pointer input the agent performs
type Action string

const (
	ActionClick      Action = "click"
	ActionRightClick Action = "right_click"
	ActionMove       Action = "move"
	ActionSell       Action = "sell"
)

type inputRequest struct {
	Action Action `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (c *Client) pointer(action Action, pt screen.Vec2) {
	c.send("/input/pointer", inputRequest{Action: action, X: pt.X, Y: pt.Y})
}

func (c *Client) Click(pt screen.Vec2) { c.pointer(ActionClick, pt) }

func (c *Client) RightClick(pt screen.Vec2) { c.pointer(ActionRightClick, pt) }

func (c *Client) MoveTo(pt screen.Vec2) { c.pointer(ActionMove, pt) }

// PressAction moves to pt and presses the sell key
func (c *Client) PressAction(pt screen.Vec2) { c.pointer(ActionSell, pt) }

func (c *Client) Reroll() { c.send("/input/reroll", nil) }

func (c *Client) BuyXP() { c.send("/input/buy_xp", nil) }
