package postfixnotation

import "fmt"

// ToPostfixNotation reorders infix tokens into postfix notation.
// Operators of equal precedence pop before the new one is pushed, which makes
// every binary operator left-associative, "^" included: 2^3^2 is (2^3)^2.
func ToPostfixNotation(tokens []Token) ([]Token, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}
	stack := make([]Token, 0, len(tokens)) //операторы
	queue := make([]Token, 0, len(tokens)) //выход
	for i, t := range tokens {
		switch t.Kind {
		case Number, Constant, Postfix:
			queue = append(queue, t)
		case Function:
			if i+1 >= len(tokens) || tokens[i+1].Kind != LeftParen {
				return nil, fmt.Errorf("%w: %s needs a parenthesised argument", ErrMalformedExpression, t.Symbol)
			}
			stack = append(stack, t)
		case Prefix, LeftParen:
			stack = append(stack, t)
		case Operator:
			for len(stack) != 0 {
				top := stack[len(stack)-1]
				if top.Kind != Operator && top.Kind != Prefix {
					break
				}
				if precedence[top.Symbol] < precedence[t.Symbol] {
					break
				}
				queue = append(queue, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, t)
		case RightParen:
			matched := false
			for len(stack) != 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Kind == LeftParen {
					matched = true
					break
				}
				queue = append(queue, top)
			}
			if !matched {
				return nil, fmt.Errorf("%w: unexpected ) at token %d", ErrUnbalancedParentheses, i)
			}
			//функция берёт скобку сразу после себя
			if len(stack) != 0 && stack[len(stack)-1].Kind == Function {
				queue = append(queue, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		default:
			return nil, fmt.Errorf("%w: unexpected %s token", ErrMalformedExpression, t.Kind)
		}
	}
	for len(stack) != 0 {
		top := stack[len(stack)-1]
		if top.Kind == LeftParen {
			return nil, fmt.Errorf("%w: unclosed (", ErrUnbalancedParentheses)
		}
		queue = append(queue, top)
		stack = stack[:len(stack)-1]
	}
	return queue, nil
}
