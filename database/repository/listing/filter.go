package listingRepo

import (
	"regexp"

	"roaddarts/services/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matchFilter serializes a search predicate into a $match document.
func matchFilter(p search.Predicate) bson.M {
	conds := make([]bson.M, 0, len(p.Clauses))
	for _, c := range p.Clauses {
		if cond := clauseFilter(c); cond != nil {
			conds = append(conds, cond)
		}
	}
	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	}
	return bson.M{"$and": conds}
}

func clauseFilter(c search.Clause) bson.M {
	switch c.Kind {
	case search.ExactMatch:
		return bson.M{c.Field: c.Value}
	case search.CaseInsensitiveMatch:
		return bson.M{c.Field: wholeWordFold(c.Value)}
	case search.RangeMatch:
		bounds := bson.M{}
		if c.Min != nil {
			bounds["$gte"] = *c.Min
		}
		if c.Max != nil {
			bounds["$lte"] = *c.Max
		}
		if c.AllowAbsent {
			// {field: null} matches both a missing field and an explicit null.
			return bson.M{"$or": bson.A{bson.M{c.Field: bounds}, bson.M{c.Field: nil}}}
		}
		return bson.M{c.Field: bounds}
	case search.SubstringAny:
		re := primitive.Regex{Pattern: regexp.QuoteMeta(c.Value), Options: "i"}
		or := make(bson.A, 0, len(c.Fields))
		for _, f := range c.Fields {
			or = append(or, bson.M{f: re})
		}
		return bson.M{"$or": or}
	case search.BooleanFlagAll:
		all := bson.M{}
		for _, f := range c.Fields {
			all[f] = true
		}
		return all
	}
	return nil
}

func wholeWordFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}
