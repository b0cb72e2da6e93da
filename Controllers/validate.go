package Controllers

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared across controllers; request bodies carry validate
// tags (dates are datetime=2006-01-02).
var validate = validator.New()
