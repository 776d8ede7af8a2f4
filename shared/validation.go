// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shared

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/l3montree-dev/cvesync/utils"
)

var cveIDPattern = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

func IsValidCVEID(id string) bool {
	return cveIDPattern.MatchString(utils.NormalizeCVEID(id))
}

func init() {
	// the validator is shared across the process, register the domain rules once
	if err := V.RegisterValidation("cveid", func(fl validator.FieldLevel) bool {
		return IsValidCVEID(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}
