package handlers

import (
	"context"
	"fmt"
	"unicode"

	"github.com/aretw0/lathe/pkg/host"
)

// Parameters returns the user-parameter management actions.
func Parameters() Table {
	return Table{
		"set_parameter":    setParameter,
		"rename_parameter": renameParameter,
		"delete_parameter": deleteParameter,
	}
}

func setParameter(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Name       string   `json:"name"`
		Value      *float64 `json:"value"`
		Unit       string   `json:"unit"`
		Expression string   `json:"expression"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("Name required")
	}
	if p.Expression == "" && p.Value == nil {
		return nil, fmt.Errorf("Either value or expression required")
	}
	if p.Unit == "" {
		p.Unit = "cm"
	}

	exprString := p.Expression
	if exprString == "" {
		exprString = fmt.Sprintf("%g %s", *p.Value, p.Unit)
	}

	design := ec.Design()
	calculated, err := design.EvalExpression(exprString)
	if err != nil {
		return nil, fmt.Errorf("Invalid expression '%s': %v", exprString, err)
	}

	verb := "Created"
	existing := design.UserParameter(p.Name)
	if existing != nil {
		existing.Expression = exprString
		existing.Value = calculated
		existing.Unit = p.Unit
		verb = "Updated"
	} else {
		design.UserParams = append(design.UserParams, &host.Parameter{
			Name:       p.Name,
			Expression: exprString,
			Value:      calculated,
			Unit:       p.Unit,
		})
	}

	return map[string]any{
		"message":          fmt.Sprintf("%s %s = %s", verb, p.Name, exprString),
		"expression":       exprString,
		"calculated_value": calculated,
		"unit":             p.Unit,
	}, nil
}

func renameParameter(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.OldName == "" || p.NewName == "" {
		return nil, fmt.Errorf("old_name and new_name required")
	}

	design := ec.Design()
	existing := design.UserParameter(p.OldName)
	if existing == nil {
		return nil, fmt.Errorf("Parameter '%s' not found", p.OldName)
	}
	if design.UserParameter(p.NewName) != nil {
		return nil, fmt.Errorf("Parameter '%s' already exists", p.NewName)
	}

	existing.Name = p.NewName
	// References in other expressions follow the rename automatically.
	for _, other := range design.UserParams {
		if other == existing {
			continue
		}
		other.Expression = renameReferences(other.Expression, p.OldName, p.NewName)
	}

	return map[string]any{
		"message":  fmt.Sprintf("Renamed '%s' to '%s'", p.OldName, p.NewName),
		"old_name": p.OldName,
		"new_name": p.NewName,
	}, nil
}

func deleteParameter(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name required")
	}

	design := ec.Design()
	existing := design.UserParameter(p.Name)
	if existing == nil {
		return nil, fmt.Errorf("Parameter '%s' not found", p.Name)
	}

	for _, other := range design.UserParams {
		if other != existing && referencesParameter(other.Expression, p.Name) {
			return nil, fmt.Errorf("Cannot delete '%s': referenced by '%s'", p.Name, other.Name)
		}
	}

	kept := design.UserParams[:0]
	for _, param := range design.UserParams {
		if param != existing {
			kept = append(kept, param)
		}
	}
	design.UserParams = kept

	return map[string]any{
		"message": fmt.Sprintf("Deleted parameter '%s'", p.Name),
	}, nil
}

// identTokens splits an expression into identifier tokens and the text
// between them, preserving order so the pieces re-join losslessly.
func identTokens(expr string) []string {
	var tokens []string
	runes := []rune(expr)
	i := 0
	for i < len(runes) {
		if unicode.IsLetter(runes[i]) || runes[i] == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
			continue
		}
		start := i
		for i < len(runes) && !unicode.IsLetter(runes[i]) && runes[i] != '_' {
			i++
		}
		tokens = append(tokens, string(runes[start:i]))
	}
	return tokens
}

func isIdent(tok string) bool {
	if tok == "" {
		return false
	}
	r := []rune(tok)[0]
	return unicode.IsLetter(r) || r == '_'
}

func referencesParameter(expr, name string) bool {
	for _, tok := range identTokens(expr) {
		if tok == name {
			return true
		}
	}
	return false
}

func renameReferences(expr, oldName, newName string) string {
	tokens := identTokens(expr)
	out := ""
	for _, tok := range tokens {
		if isIdent(tok) && tok == oldName {
			out += newName
		} else {
			out += tok
		}
	}
	return out
}
