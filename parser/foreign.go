package parser

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
)

var svgTagNames = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"fecolormatrix":       "feColorMatrix",
	"fecomponenttransfer": "feComponentTransfer",
	"fecomposite":         "feComposite",
	"feconvolvematrix":    "feConvolveMatrix",
	"fediffuselighting":   "feDiffuseLighting",
	"fedisplacementmap":   "feDisplacementMap",
	"fedistantlight":      "feDistantLight",
	"fedropshadow":        "feDropShadow",
	"feflood":             "feFlood",
	"fefunca":             "feFuncA",
	"fefuncb":             "feFuncB",
	"fefuncg":             "feFuncG",
	"fefuncr":             "feFuncR",
	"fegaussianblur":      "feGaussianBlur",
	"feimage":             "feImage",
	"femerge":             "feMerge",
	"femergenode":         "feMergeNode",
	"femorphology":        "feMorphology",
	"feoffset":            "feOffset",
	"fepointlight":        "fePointLight",
	"fespecularlighting":  "feSpecularLighting",
	"fespotlight":         "feSpotLight",
	"fetile":              "feTile",
	"feturbulence":        "feTurbulence",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
}

var svgAttributeNames = map[string]string{
	"attributename":       "attributeName",
	"attributetype":       "attributeType",
	"basefrequency":       "baseFrequency",
	"baseprofile":         "baseProfile",
	"calcmode":            "calcMode",
	"clippathunits":       "clipPathUnits",
	"diffuseconstant":     "diffuseConstant",
	"edgemode":            "edgeMode",
	"filterunits":         "filterUnits",
	"glyphref":            "glyphRef",
	"gradienttransform":   "gradientTransform",
	"gradientunits":       "gradientUnits",
	"kernelmatrix":        "kernelMatrix",
	"kernelunitlength":    "kernelUnitLength",
	"keypoints":           "keyPoints",
	"keysplines":          "keySplines",
	"keytimes":            "keyTimes",
	"lengthadjust":        "lengthAdjust",
	"limitingconeangle":   "limitingConeAngle",
	"markerheight":        "markerHeight",
	"markerunits":         "markerUnits",
	"markerwidth":         "markerWidth",
	"maskcontentunits":    "maskContentUnits",
	"maskunits":           "maskUnits",
	"numoctaves":          "numOctaves",
	"pathlength":          "pathLength",
	"patterncontentunits": "patternContentUnits",
	"patterntransform":    "patternTransform",
	"patternunits":        "patternUnits",
	"pointsatx":           "pointsAtX",
	"pointsaty":           "pointsAtY",
	"pointsatz":           "pointsAtZ",
	"preservealpha":       "preserveAlpha",
	"preserveaspectratio": "preserveAspectRatio",
	"primitiveunits":      "primitiveUnits",
	"refx":                "refX",
	"refy":                "refY",
	"repeatcount":         "repeatCount",
	"repeatdur":           "repeatDur",
	"requiredextensions":  "requiredExtensions",
	"requiredfeatures":    "requiredFeatures",
	"specularconstant":    "specularConstant",
	"specularexponent":    "specularExponent",
	"spreadmethod":        "spreadMethod",
	"startoffset":         "startOffset",
	"stddeviation":        "stdDeviation",
	"stitchtiles":         "stitchTiles",
	"surfacescale":        "surfaceScale",
	"systemlanguage":      "systemLanguage",
	"tablevalues":         "tableValues",
	"targetx":             "targetX",
	"targety":             "targetY",
	"textlength":          "textLength",
	"viewbox":             "viewBox",
	"viewtarget":          "viewTarget",
	"xchannelselector":    "xChannelSelector",
	"ychannelselector":    "yChannelSelector",
	"zoomandpan":          "zoomAndPan",
}

var mathMLAttributeNames = map[string]string{
	"definitionurl": "definitionURL",
}

func adjustMathMLAttributes(attrs *dom.Attributes) *dom.Attributes {
	return attrs.Rename(mathMLAttributeNames)
}

func isMathMLTextIntegrationPoint(el *dom.Element) bool {
	if el.Namespace != dom.MathML {
		return false
	}
	switch el.Name {
	case "mi", "mo", "mn", "ms", "mtext":
		return true
	}
	return false
}

func isHTMLIntegrationPoint(el *dom.Element) bool {
	switch el.Namespace {
	case dom.MathML:
		if el.Name != "annotation-xml" {
			return false
		}
		enc, _ := el.Attrs.Get("encoding")
		return strings.EqualFold(enc, "text/html") || strings.EqualFold(enc, "application/xhtml+xml")
	case dom.SVG:
		switch el.Name {
		case "foreignObject", "desc", "title":
			return true
		}
	}
	return false
}

// inForeignContent picks between the insertion mode rules and the rules
// for foreign content.
func (c *HTMLTreeConstructor) inForeignContent(t *Token) bool {
	if len(c.stackOfOpenElements) == 0 || t.TokenType == endOfFileToken {
		return false
	}
	el := c.el(c.adjustedCurrentNode())
	if el.Namespace == dom.HTML {
		return false
	}
	if isMathMLTextIntegrationPoint(el) {
		if t.TokenType == startTagToken && t.TagName != "mglyph" && t.TagName != "malignmark" {
			return false
		}
		if t.TokenType == characterToken {
			return false
		}
	}
	if el.IsNamed(dom.MathML, "annotation-xml") && t.TokenType == startTagToken && t.TagName == "svg" {
		return false
	}
	if isHTMLIntegrationPoint(el) && (t.TokenType == startTagToken || t.TokenType == characterToken) {
		return false
	}
	return true
}

// breaksOutOfForeignContent reports HTML start tags that end foreign content.
func breaksOutOfForeignContent(t *Token) bool {
	switch t.TagName {
	case "b", "big", "blockquote", "body", "br", "center", "code", "dd", "div", "dl", "dt", "em", "embed",
		"h1", "h2", "h3", "h4", "h5", "h6", "head", "hr", "i", "img", "li", "listing", "menu", "meta",
		"nobr", "ol", "p", "pre", "ruby", "s", "small", "span", "strong", "strike", "sub", "sup", "table",
		"tt", "u", "ul", "var":
		return true
	case "font":
		return t.Attributes.Has("color") || t.Attributes.Has("face") || t.Attributes.Has("size")
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inforeign
func (c *HTMLTreeConstructor) foreignContentHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		err := noError
		if strings.IndexByte(t.Data, 0) >= 0 {
			err = unexpectedNullInTree
			t.Data = strings.ReplaceAll(t.Data, "\x00", "\uFFFD")
		}
		c.insertCharacterToken(t)
		if strings.Trim(t.Data, whitespace+"\uFFFD") != "" {
			c.framesetOK = false
		}
		return false, c.insertionMode, err
	case commentToken:
		c.insertComment(t)
		return false, c.insertionMode, noError
	case docTypeToken:
		return false, c.insertionMode, unexpectedDoctype
	case startTagToken:
		if breaksOutOfForeignContent(t) {
			c.popToIntegrationPoint(t.Pos)
			reprocess, next, _ := c.useRulesFor(t, c.insertionMode)
			return reprocess, next, unexpectedStartTag
		}
		acn := c.el(c.adjustedCurrentNode())
		name, attrs := t.TagName, t.Attributes
		switch acn.Namespace {
		case dom.MathML:
			attrs = adjustMathMLAttributes(attrs)
		case dom.SVG:
			if n, ok := svgTagNames[name]; ok {
				name = n
			}
			attrs = attrs.Rename(svgAttributeNames)
		}
		c.insertForeignElement(t, acn.Namespace, name, attrs.AdjustForeign())
		return false, c.insertionMode, noError
	case endTagToken:
		if t.TagName == "br" || t.TagName == "p" {
			c.popToIntegrationPoint(t.Pos)
			reprocess, next, _ := c.useRulesFor(t, c.insertionMode)
			return reprocess, next, unexpectedEndTag
		}
		return c.foreignEndTag(t)
	}
	return false, c.insertionMode, noError
}

// popToIntegrationPoint pops foreign elements until an HTML element or an
// integration point is current. The token is then handled by the insertion
// mode directly, without going through the dispatcher again.
func (c *HTMLTreeConstructor) popToIntegrationPoint(pos int) {
	for len(c.stackOfOpenElements) > 1 {
		cur := c.current()
		if cur.Namespace == dom.HTML || isMathMLTextIntegrationPoint(cur) || isHTMLIntegrationPoint(cur) {
			return
		}
		c.pop(pos)
	}
}

func (c *HTMLTreeConstructor) foreignEndTag(t *Token) (bool, insertionMode, parseError) {
	err := noError
	k := len(c.stackOfOpenElements) - 1
	if strings.ToLower(c.el(c.stackOfOpenElements[k]).Name) != t.TagName {
		err = unexpectedEndTag
	}
	for ; k > 0; k-- {
		i := c.stackOfOpenElements[k]
		el := c.el(i)
		if strings.ToLower(el.Name) == t.TagName {
			c.popUntilElement(i, t.Pos)
			return false, c.insertionMode, err
		}
		if c.el(c.stackOfOpenElements[k-1]).Namespace == dom.HTML {
			reprocess, next, _ := c.useRulesFor(t, c.insertionMode)
			return reprocess, next, err
		}
	}
	return false, c.insertionMode, err
}
