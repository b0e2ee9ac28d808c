// Package nodes implements the dialogue nodes that process one turn each.
package nodes
