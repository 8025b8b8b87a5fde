package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Unauthorized = NewApiErr(http.StatusUnauthorized, "unauthorized")
)

// Business-rule violations for the merge engine and attachment graph.
var (
	ErrSelfAttachment      = errors.New("cannot attach prompt to itself")
	ErrCircularAttachment  = errors.New("circular attachment detected")
	ErrDuplicateAttachment = errors.New("prompt is already attached")
	ErrAttachmentLimit     = errors.New("maximum number of attached prompts reached")
	ErrUnsupportedStrategy = errors.New("unsupported merge strategy")
	ErrEmptyTemplate       = errors.New("template is required for template strategy")
	ErrTooFewPrompts       = errors.New("at least 2 prompts required for merging")
	ErrDuplicatePromptIDs  = errors.New("duplicate prompt IDs found")
	ErrInactivePrompt      = errors.New("prompt is not active")
)

// Account workflow violations.
var (
	ErrAccountPending  = errors.New("account is pending approval")
	ErrAccountDisabled = errors.New("account is disabled")
)

func Malformed(payloadName string) *ApiErr {
	return NewApiErr(http.StatusBadRequest, payloadName+" malformed")
}

func BadRequest(message string) *ApiErr {
	return NewApiErr(http.StatusBadRequest, message)
}

func NewSelfAttachmentError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrSelfAttachment,
		Field:      "attached_prompt_id",
	}
}

func NewCircularAttachmentError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrCircularAttachment,
		Details:    "this attachment would create an infinite loop",
		Field:      "attached_prompt_id",
	}
}

func NewDuplicateAttachmentError(mainID, attachedID string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrDuplicateAttachment,
		Details:    fmt.Sprintf("prompt %s is already attached to prompt %s", attachedID, mainID),
		Field:      "attached_prompt_id",
	}
}

func NewAttachmentLimitError(limit int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrAttachmentLimit,
		Details:    fmt.Sprintf("a prompt can hold at most %d attachments", limit),
	}
}

func NewUnsupportedStrategyError(strategy string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnsupportedStrategy,
		Details:    fmt.Sprintf("unknown merge strategy: %s", strategy),
		Field:      "strategy",
	}
}

func NewEmptyTemplateError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrEmptyTemplate,
		Field:      "template",
	}
}

func NewTooFewPromptsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrTooFewPrompts,
		Field:      "prompt_ids",
	}
}

func NewDuplicatePromptIDsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrDuplicatePromptIDs,
		Field:      "prompt_ids",
	}
}

func NewInactivePromptError(id string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInactivePrompt,
		Details:    fmt.Sprintf("prompt %s is not active", id),
	}
}

func NewAccountPendingError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrAccountPending,
		Details:    "an administrator must approve this account before it can be used",
	}
}

func NewAccountDisabledError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrAccountDisabled,
	}
}

func IsAccountPending(err error) bool {
	return errors.Is(err, ErrAccountPending)
}

func IsAccountDisabled(err error) bool {
	return errors.Is(err, ErrAccountDisabled)
}

func IsSelfAttachment(err error) bool {
	return errors.Is(err, ErrSelfAttachment)
}

func IsCircularAttachment(err error) bool {
	return errors.Is(err, ErrCircularAttachment)
}

func IsDuplicateAttachment(err error) bool {
	return errors.Is(err, ErrDuplicateAttachment)
}

func IsAttachmentLimit(err error) bool {
	return errors.Is(err, ErrAttachmentLimit)
}

func IsUnsupportedStrategy(err error) bool {
	return errors.Is(err, ErrUnsupportedStrategy)
}
